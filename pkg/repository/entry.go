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

// EntryRepository handles entry-related database operations. Entries are never updated.
type EntryRepository struct {
	db sqlx.ExtContext
}

// entrySQL represents an entry for SQL operations
type entrySQL struct {
	ID          int64  `db:"id"`
	FeedID      int64  `db:"feed_id"`
	GUID        string `db:"guid"`
	Title       string `db:"title"`
	Author      string `db:"author"`
	URL         string `db:"url"`
	Content     string `db:"content"`
	PublishedAt int64  `db:"published_at"`
	CreatedAt   int64  `db:"created_at"`
}

// readEntrySQL is an entry joined with read state
type readEntrySQL struct {
	entrySQL
	Read bool `db:"is_read"`
}

const entryColumns = "e.id, e.feed_id, e.guid, e.title, e.author, e.url, e.content, e.published_at, e.created_at"

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db sqlx.ExtContext) *EntryRepository {
	return &EntryRepository{db: db}
}

// Insert adds entry unless (feed_id, guid) already exists. Returns true and sets ID if inserted.
func (r *EntryRepository) Insert(ctx context.Context, entry *domain.Entry) (bool, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO entries (feed_id, guid, title, author, url, content, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, guid) DO NOTHING
		RETURNING id`)
	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, query, entry.FeedID, entry.GUID, entry.Title, entry.Author,
		entry.URL, entry.Content, toUnix(entry.Published), toUnix(entry.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil // already seen
	}
	if err != nil {
		return false, conflictError("insert entry", err)
	}
	entry.ID = id
	return true, nil
}

// Get retrieves an entry by ID
func (r *EntryRepository) Get(ctx context.Context, id int64) (*domain.Entry, error) {
	var e entrySQL
	err := sqlx.GetContext(ctx, r.db, &e, r.db.Rebind("SELECT "+entryColumns+" FROM entries e WHERE e.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e.toDomain(), nil
}

// ListByFeed retrieves all entries of a feed in insertion order
func (r *EntryRepository) ListByFeed(ctx context.Context, feedID int64) ([]domain.Entry, error) {
	var rows []entrySQL
	query := r.db.Rebind("SELECT " + entryColumns + " FROM entries e WHERE e.feed_id = ? ORDER BY e.id")
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, feedID); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	res := make([]domain.Entry, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res, nil
}

// Count returns number of entries in a feed
func (r *EntryRepository) Count(ctx context.Context, feedID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind("SELECT COUNT(*) FROM entries WHERE feed_id = ?"), feedID); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// CountUnread returns number of feed entries without a read marker of the user
func (r *EntryRepository) CountUnread(ctx context.Context, username string, feedID int64) (int, error) {
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM entries e
		WHERE e.feed_id = ?
		AND NOT EXISTS (SELECT 1 FROM read_markers m WHERE m.username = ? AND m.entry_id = e.id)`)
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, query, feedID, username); err != nil {
		return 0, fmt.Errorf("count unread entries: %w", err)
	}
	return n, nil
}

// ListIDs returns IDs of feed entries in feed order, filtered by the user's read state
func (r *EntryRepository) ListIDs(ctx context.Context, username string, feedID int64, filter domain.EntryFilter) ([]int64, error) {
	cond, args, err := readFilter(username, filter)
	if err != nil {
		return nil, fmt.Errorf("list entry ids: %w", err)
	}
	query := "SELECT e.id FROM entries e WHERE e.feed_id = ?" + cond + " ORDER BY e.id"

	ids := []int64{}
	if err := sqlx.SelectContext(ctx, r.db, &ids, r.db.Rebind(query), append([]any{feedID}, args...)...); err != nil {
		return nil, fmt.Errorf("list entry ids: %w", err)
	}
	return ids, nil
}

// ListLatest returns up to limit feed entries with the user's read flag, newest published first.
// Entries published at the same second keep feed order.
func (r *EntryRepository) ListLatest(ctx context.Context, username string, feedID int64, filter domain.EntryFilter,
	limit int) ([]domain.ReadEntry, error) {
	cond, args, err := readFilter(username, filter)
	if err != nil {
		return nil, fmt.Errorf("list latest entries: %w", err)
	}
	query := `SELECT ` + entryColumns + `,
			EXISTS (SELECT 1 FROM read_markers m WHERE m.username = ? AND m.entry_id = e.id) AS is_read
		FROM entries e
		WHERE e.feed_id = ?` + cond + `
		ORDER BY e.published_at DESC, e.id
		LIMIT ?`
	qargs := append([]any{username, feedID}, args...)
	qargs = append(qargs, limit)

	var rows []readEntrySQL
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), qargs...); err != nil {
		return nil, fmt.Errorf("list latest entries: %w", err)
	}
	res := make([]domain.ReadEntry, len(rows))
	for i := range rows {
		res[i] = domain.ReadEntry{Entry: *rows[i].toDomain(), Read: rows[i].Read}
	}
	return res, nil
}

// readFilter makes the where clause selecting entries by the user's read state
func readFilter(username string, filter domain.EntryFilter) (cond string, args []any, err error) {
	marker := "EXISTS (SELECT 1 FROM read_markers m WHERE m.username = ? AND m.entry_id = e.id)"
	switch filter {
	case domain.FilterAll, "":
		return "", nil, nil
	case domain.FilterRead:
		return " AND " + marker, []any{username}, nil
	case domain.FilterUnread:
		return " AND NOT " + marker, []any{username}, nil
	}
	return "", nil, fmt.Errorf("%q: %w", filter, domain.ErrInvalidFilter)
}

// ExistingIDs returns the subset of ids present in storage
func (r *EntryRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	query, args, err := sqlx.In("SELECT id FROM entries WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, fmt.Errorf("build existing ids query: %w", err)
	}
	res := []int64{}
	if err := sqlx.SelectContext(ctx, r.db, &res, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select existing ids: %w", err)
	}
	return res, nil
}

// UnreachableIDs returns the subset of ids whose feed the user is not subscribed to
func (r *EntryRepository) UnreachableIDs(ctx context.Context, username string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT e.id FROM entries e
		WHERE e.id IN (?)
		AND NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.username = ? AND s.feed_id = e.feed_id)
		ORDER BY e.id`, ids, username)
	if err != nil {
		return nil, fmt.Errorf("build unreachable ids query: %w", err)
	}
	res := []int64{}
	if err := sqlx.SelectContext(ctx, r.db, &res, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select unreachable ids: %w", err)
	}
	return res, nil
}

// GetWithReadState retrieves entries by ids with the user's read flag, ordered by id
func (r *EntryRepository) GetWithReadState(ctx context.Context, username string, ids []int64) ([]domain.ReadEntry, error) {
	if len(ids) == 0 {
		return []domain.ReadEntry{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+entryColumns+`,
			EXISTS (SELECT 1 FROM read_markers m WHERE m.username = ? AND m.entry_id = e.id) AS is_read
		FROM entries e
		WHERE e.id IN (?)
		ORDER BY e.id`, username, ids)
	if err != nil {
		return nil, fmt.Errorf("build entries query: %w", err)
	}
	var rows []readEntrySQL
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	res := make([]domain.ReadEntry, len(rows))
	for i := range rows {
		res[i] = domain.ReadEntry{Entry: *rows[i].toDomain(), Read: rows[i].Read}
	}
	return res, nil
}

// toDomain converts SQL entry to domain entry
func (e *entrySQL) toDomain() *domain.Entry {
	return &domain.Entry{
		ID:        e.ID,
		FeedID:    e.FeedID,
		GUID:      e.GUID,
		Title:     e.Title,
		Author:    e.Author,
		URL:       e.URL,
		Content:   e.Content,
		Published: fromUnix(e.PublishedAt),
		CreatedAt: fromUnix(e.CreatedAt),
	}
}
