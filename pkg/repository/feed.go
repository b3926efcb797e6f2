package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// FeedRepository handles feed-related database operations
type FeedRepository struct {
	db sqlx.ExtContext
}

// feedSQL represents a feed for SQL operations
type feedSQL struct {
	ID            int64  `db:"id"`
	Title         string `db:"title"`
	URL           string `db:"feed_url"`
	SiteURL       string `db:"site_url"`
	ETag          string `db:"etag"`
	LastModified  string `db:"last_modified"`
	LastRefreshAt *int64 `db:"last_refresh_at"`
	CreatedAt     int64  `db:"created_at"`
}

const feedColumns = "id, title, feed_url, site_url, etag, last_modified, last_refresh_at, created_at"

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db sqlx.ExtContext) *FeedRepository {
	return &FeedRepository{db: db}
}

// Create inserts a new feed and sets its ID. Duplicate URL is reported as domain.ErrConflict.
func (r *FeedRepository) Create(ctx context.Context, feed *domain.Feed) error {
	var refreshed *int64
	if feed.LastRefreshAt != nil {
		ts := toUnix(*feed.LastRefreshAt)
		refreshed = &ts
	}
	if feed.CreatedAt.IsZero() {
		feed.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO feeds (title, feed_url, site_url, etag, last_modified, last_refresh_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query, feed.Title, feed.URL, feed.SiteURL,
		feed.ETag, feed.LastModified, refreshed, toUnix(feed.CreatedAt))
	if err != nil {
		return conflictError("create feed", err)
	}
	feed.ID = id
	return nil
}

// Get retrieves a feed by ID
func (r *FeedRepository) Get(ctx context.Context, id int64) (*domain.Feed, error) {
	var f feedSQL
	err := sqlx.GetContext(ctx, r.db, &f, r.db.Rebind("SELECT "+feedColumns+" FROM feeds WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return f.toDomain(), nil
}

// GetByURL retrieves a feed by its document URL
func (r *FeedRepository) GetByURL(ctx context.Context, feedURL string) (*domain.Feed, error) {
	var f feedSQL
	err := sqlx.GetContext(ctx, r.db, &f, r.db.Rebind("SELECT "+feedColumns+" FROM feeds WHERE feed_url = ?"), feedURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %s: %w", feedURL, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed by url: %w", err)
	}
	return f.toDomain(), nil
}

// List retrieves all feeds ordered by ID
func (r *FeedRepository) List(ctx context.Context) ([]domain.Feed, error) {
	var rows []feedSQL
	if err := sqlx.SelectContext(ctx, r.db, &rows, "SELECT "+feedColumns+" FROM feeds ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return toDomainFeeds(rows), nil
}

// ListStale retrieves feeds never attempted or last attempted before cutoff, oldest first
func (r *FeedRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Feed, error) {
	query := r.db.Rebind(`
		SELECT ` + feedColumns + ` FROM feeds
		WHERE last_refresh_at IS NULL OR last_refresh_at < ?
		ORDER BY COALESCE(last_refresh_at, 0), id`)
	var rows []feedSQL
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, toUnix(cutoff)); err != nil {
		return nil, fmt.Errorf("list stale feeds: %w", err)
	}
	return toDomainFeeds(rows), nil
}

// UpdateFetched stores metadata and validators of a successful fetch along with the attempt time
func (r *FeedRepository) UpdateFetched(ctx context.Context, feed *domain.Feed, refreshedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE feeds
		SET title = ?, site_url = ?, etag = ?, last_modified = ?, last_refresh_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, feed.Title, feed.SiteURL, feed.ETag, feed.LastModified,
		toUnix(refreshedAt), feed.ID)
	if err != nil {
		return fmt.Errorf("update fetched feed: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("feed %d", feed.ID))
}

// Touch records a refresh attempt without changing anything else
func (r *FeedRepository) Touch(ctx context.Context, id int64, refreshedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE feeds SET last_refresh_at = ? WHERE id = ?"), toUnix(refreshedAt), id)
	if err != nil {
		return fmt.Errorf("touch feed: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("feed %d", id))
}

// Delete removes a feed with its entries. Fails while any subscription references it.
func (r *FeedRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM feeds WHERE id = ?"), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete feed %d: %w: %w", id, domain.ErrConflict, err)
		}
		return fmt.Errorf("delete feed: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("feed %d", id))
}

// toDomain converts SQL feed to domain feed
func (f *feedSQL) toDomain() *domain.Feed {
	return &domain.Feed{
		ID:            f.ID,
		Title:         f.Title,
		URL:           f.URL,
		SiteURL:       f.SiteURL,
		ETag:          f.ETag,
		LastModified:  f.LastModified,
		LastRefreshAt: fromUnixPtr(f.LastRefreshAt),
		CreatedAt:     fromUnix(f.CreatedAt),
	}
}

func toDomainFeeds(rows []feedSQL) []domain.Feed {
	res := make([]domain.Feed, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res
}

// requireAffected returns domain.ErrNotFound if nothing was changed
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
