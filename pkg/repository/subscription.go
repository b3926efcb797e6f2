package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// SubscriptionRepository handles user to feed subscriptions
type SubscriptionRepository struct {
	db sqlx.ExtContext
}

// feedSummarySQL is a subscribed feed with unread count
type feedSummarySQL struct {
	feedSQL
	Unread int `db:"unread"`
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db sqlx.ExtContext) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts subscription, an existing pair is reported as domain.ErrConflict
func (r *SubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind("INSERT INTO subscriptions (username, feed_id, created_at) VALUES (?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, sub.Username, sub.FeedID, toUnix(sub.CreatedAt)); err != nil {
		return conflictError("create subscription", err)
	}
	return nil
}

// Delete removes subscription, returns false if there was none
func (r *SubscriptionRepository) Delete(ctx context.Context, username string, feedID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM subscriptions WHERE username = ? AND feed_id = ?"), username, feedID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

// Exists checks if user is subscribed to feed
func (r *SubscriptionRepository) Exists(ctx context.Context, username string, feedID int64) (bool, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM subscriptions WHERE username = ? AND feed_id = ?")
	if err := sqlx.GetContext(ctx, r.db, &n, query, username, feedID); err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return n > 0, nil
}

// CountByFeed returns number of subscribers of a feed
func (r *SubscriptionRepository) CountByFeed(ctx context.Context, feedID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind("SELECT COUNT(*) FROM subscriptions WHERE feed_id = ?"), feedID); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}

// ListSummaries returns the user's subscribed feeds with unread counts, ordered by feed ID
func (r *SubscriptionRepository) ListSummaries(ctx context.Context, username string) ([]domain.FeedSummary, error) {
	query := r.db.Rebind(`
		SELECT f.id, f.title, f.feed_url, f.site_url, f.etag, f.last_modified, f.last_refresh_at, f.created_at,
			(SELECT COUNT(*) FROM entries e
				WHERE e.feed_id = f.id
				AND NOT EXISTS (SELECT 1 FROM read_markers m WHERE m.username = s.username AND m.entry_id = e.id)
			) AS unread
		FROM subscriptions s
		JOIN feeds f ON f.id = s.feed_id
		WHERE s.username = ?
		ORDER BY f.id`)
	var rows []feedSummarySQL
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, username); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	res := make([]domain.FeedSummary, len(rows))
	for i := range rows {
		res[i] = domain.FeedSummary{Feed: *rows[i].toDomain(), Unread: rows[i].Unread}
	}
	return res, nil
}
