// Package readstate manages user subscriptions and per-entry read state. Every operation runs
// in a single transaction and is applied fully or not at all.
package readstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/repository"
)

// TxRunner runs fn in a single transaction, repository.Repositories implements it
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *repository.Tx) error) error
}

// Store implements subscription and read-state operations
type Store struct {
	db  TxRunner
	now func() time.Time
}

// NewStore makes a store on top of db
func NewStore(db TxRunner) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Subscribe links user to an existing feed
func (s *Store) Subscribe(ctx context.Context, username string, feedID int64) error {
	return s.db.InTx(ctx, func(tx *repository.Tx) error {
		if _, err := tx.User.Get(ctx, username); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		if _, err := tx.Feed.Get(ctx, feedID); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		subscribed, err := tx.Subscription.Exists(ctx, username, feedID)
		if err != nil {
			return err
		}
		if subscribed {
			return fmt.Errorf("subscribe %s to feed %d: %w", username, feedID, domain.ErrAlreadySubscribed)
		}
		err = tx.Subscription.Create(ctx, domain.Subscription{Username: username, FeedID: feedID, CreatedAt: s.now()})
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("subscribe %s to feed %d: %w", username, feedID, domain.ErrAlreadySubscribed)
		}
		return err
	})
}

// Unsubscribe removes the user's subscription. Read markers of the feed's entries are kept.
func (s *Store) Unsubscribe(ctx context.Context, username string, feedID int64) error {
	return s.db.InTx(ctx, func(tx *repository.Tx) error {
		removed, err := tx.Subscription.Delete(ctx, username, feedID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("unsubscribe %s from feed %d: %w", username, feedID, domain.ErrNotSubscribed)
		}
		return nil
	})
}

// ListSubscriptions returns subscribed feeds with unread counts
func (s *Store) ListSubscriptions(ctx context.Context, username string) (res []domain.FeedSummary, err error) {
	err = s.db.InTx(ctx, func(tx *repository.Tx) error {
		res, err = tx.Subscription.ListSummaries(ctx, username)
		return err
	})
	return res, err
}

// UnreadCount returns number of unread entries in a subscribed feed
func (s *Store) UnreadCount(ctx context.Context, username string, feedID int64) (count int, err error) {
	err = s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := requireSubscription(ctx, tx, username, feedID); err != nil {
			return err
		}
		count, err = tx.Entry.CountUnread(ctx, username, feedID)
		return err
	})
	return count, err
}

// ListEntries returns entry ids of a subscribed feed in feed order, filtered by read state
func (s *Store) ListEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter) (ids []int64, err error) {
	if _, err := domain.ParseEntryFilter(string(filter)); err != nil {
		return nil, fmt.Errorf("list entries, %q: %w", filter, err)
	}
	err = s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := requireSubscription(ctx, tx, username, feedID); err != nil {
			return err
		}
		ids, err = tx.Entry.ListIDs(ctx, username, feedID, filter)
		return err
	})
	return ids, err
}

// LatestEntries returns up to limit entries of a subscribed feed with read flags, newest published first
func (s *Store) LatestEntries(ctx context.Context, username string, feedID int64, filter domain.EntryFilter,
	limit int) (res []domain.ReadEntry, err error) {
	if _, err := domain.ParseEntryFilter(string(filter)); err != nil {
		return nil, fmt.Errorf("latest entries, %q: %w", filter, err)
	}
	err = s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := requireSubscription(ctx, tx, username, feedID); err != nil {
			return err
		}
		res, err = tx.Entry.ListLatest(ctx, username, feedID, filter, limit)
		return err
	})
	return res, err
}

// GetEntries returns entries with read flags, all ids must be reachable through subscriptions
func (s *Store) GetEntries(ctx context.Context, username string, ids []int64) (res []domain.ReadEntry, err error) {
	err = s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := checkAccess(ctx, tx, username, ids); err != nil {
			return err
		}
		res, err = tx.Entry.GetWithReadState(ctx, username, ids)
		return err
	})
	return res, err
}

// MarkRead marks entries read. Either every id is marked or none is.
func (s *Store) MarkRead(ctx context.Context, username string, ids []int64) error {
	return s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := checkAccess(ctx, tx, username, ids); err != nil {
			return err
		}
		return tx.ReadMarker.Mark(ctx, username, ids, s.now())
	})
}

// MarkUnread marks entries unread. Either every id is unmarked or none is.
func (s *Store) MarkUnread(ctx context.Context, username string, ids []int64) error {
	return s.db.InTx(ctx, func(tx *repository.Tx) error {
		if err := checkAccess(ctx, tx, username, ids); err != nil {
			return err
		}
		_, err := tx.ReadMarker.Unmark(ctx, username, ids)
		return err
	})
}

func requireSubscription(ctx context.Context, tx *repository.Tx, username string, feedID int64) error {
	ok, err := tx.Subscription.Exists(ctx, username, feedID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("feed %d: %w", feedID, domain.ErrNotSubscribed)
	}
	return nil
}

// checkAccess fails with ErrNotFound if any entry is missing, then with ErrForbidden if any
// entry belongs to a feed the user is not subscribed to
func checkAccess(ctx context.Context, tx *repository.Tx, username string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	want := repository.UniqueIDs(ids)
	existing, err := tx.Entry.ExistingIDs(ctx, want)
	if err != nil {
		return err
	}
	if len(existing) != len(want) {
		return fmt.Errorf("entries %v: %w", missingIDs(want, existing), domain.ErrNotFound)
	}
	unreachable, err := tx.Entry.UnreachableIDs(ctx, username, want)
	if err != nil {
		return err
	}
	if len(unreachable) > 0 {
		return fmt.Errorf("entries %v: %w", unreachable, domain.ErrForbidden)
	}
	return nil
}

func missingIDs(want, existing []int64) []int64 {
	found := make(map[int64]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	var res []int64
	for _, id := range want {
		if !found[id] {
			res = append(res, id)
		}
	}
	return res
}
