package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReadMarkerRepository stores per-user read state, presence of a marker means read
type ReadMarkerRepository struct {
	db sqlx.ExtContext
}

// NewReadMarkerRepository creates a new read marker repository
func NewReadMarkerRepository(db sqlx.ExtContext) *ReadMarkerRepository {
	return &ReadMarkerRepository{db: db}
}

// Mark adds read markers, already read entries are left as is
func (r *ReadMarkerRepository) Mark(ctx context.Context, username string, entryIDs []int64, readAt time.Time) error {
	query := r.db.Rebind(`
		INSERT INTO read_markers (username, entry_id, read_at) VALUES (?, ?, ?)
		ON CONFLICT (username, entry_id) DO NOTHING`)
	for _, id := range UniqueIDs(entryIDs) {
		if _, err := r.db.ExecContext(ctx, query, username, id, toUnix(readAt)); err != nil {
			return fmt.Errorf("mark entry %d read: %w", id, err)
		}
	}
	return nil
}

// Unmark removes read markers, returns number of removed markers
func (r *ReadMarkerRepository) Unmark(ctx context.Context, username string, entryIDs []int64) (int64, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM read_markers WHERE username = ? AND entry_id IN (?)", username, UniqueIDs(entryIDs))
	if err != nil {
		return 0, fmt.Errorf("build unmark query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("unmark entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}

// CountByUser returns number of read markers owned by user
func (r *ReadMarkerRepository) CountByUser(ctx context.Context, username string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind("SELECT COUNT(*) FROM read_markers WHERE username = ?"), username); err != nil {
		return 0, fmt.Errorf("count read markers: %w", err)
	}
	return n, nil
}
