// Package ingest applies fetched feed documents to storage. Reconciler diffs a fetch result
// against persisted state in one transaction, Ingester adds per-feed locking and fetching on top.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/repository"
)

// TxRunner runs fn in a single transaction, repository.Repositories implements it
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *repository.Tx) error) error
}

// Status of a reconciliation
type Status string

// reconciliation statuses
const (
	StatusCreated   Status = "created"   // new feed stored with its entries
	StatusUpdated   Status = "updated"   // existing feed refreshed from a full document
	StatusUnchanged Status = "unchanged" // not modified, only the attempt time recorded
	StatusFailed    Status = "failed"    // fetch failed, only the attempt time recorded
)

// Outcome describes what a reconciliation did
type Outcome struct {
	Feed     *domain.Feed
	Status   Status
	Inserted int   // new entries stored
	Skipped  int   // entries already stored or repeated in the document
	Err      error // fetch failure for StatusFailed
}

// Reconciler applies fetch results to storage
type Reconciler struct {
	store TxRunner
	now   func() time.Time
}

// NewReconciler makes a reconciler on top of store
func NewReconciler(store TxRunner) *Reconciler {
	return &Reconciler{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// errFeedExists signals a lost race on creating a feed row
var errFeedExists = errors.New("feed already created")

// Reconcile applies a fetch result, or a fetch failure, to the feed. existing is nil for a feed
// not stored yet, in which case a fetch failure is returned as error and nothing is persisted.
// For an existing feed fetch failures are reported in Outcome, the returned error is a storage failure.
func (r *Reconciler) Reconcile(ctx context.Context, existing *domain.Feed, feedURL string,
	res *feed.Result, fetchErr error) (*Outcome, error) {
	if fetchErr == nil && res == nil {
		fetchErr = &feed.FetchError{Kind: feed.KindNetwork, URL: feedURL, Err: errors.New("empty fetch result")}
	}

	if existing == nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		if res.NotModified {
			// nothing to build a feed from, validators were not ours
			return nil, &feed.FetchError{Kind: feed.KindNetwork, URL: feedURL, Err: errors.New("not modified response for unknown feed")}
		}
		out, err := r.create(ctx, feedURL, res)
		if !errors.Is(err, errFeedExists) {
			return out, err
		}
		// another writer created it first, continue as a refresh of that row
		log.Printf("[DEBUG] feed %s created concurrently, reconciling as existing", feedURL)
		var stored *domain.Feed
		err = r.store.InTx(ctx, func(tx *repository.Tx) (err error) {
			stored, err = tx.Feed.GetByURL(ctx, feedURL)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("reload feed %s: %w", feedURL, err)
		}
		existing = stored
	}

	switch {
	case fetchErr != nil:
		return r.touch(ctx, existing, StatusFailed, fetchErr)
	case res.NotModified:
		return r.touch(ctx, existing, StatusUnchanged, nil)
	default:
		return r.update(ctx, existing, res)
	}
}

func (r *Reconciler) create(ctx context.Context, feedURL string, res *feed.Result) (*Outcome, error) {
	now := r.now()
	f := &domain.Feed{
		Title:         res.Title,
		URL:           feedURL,
		SiteURL:       res.SiteURL,
		ETag:          res.Validators.ETag,
		LastModified:  res.Validators.LastModified,
		LastRefreshAt: &now,
		CreatedAt:     now,
	}
	out := &Outcome{Feed: f, Status: StatusCreated}
	err := r.store.InTx(ctx, func(tx *repository.Tx) error {
		*out = Outcome{Feed: f, Status: StatusCreated}
		if err := tx.Feed.Create(ctx, f); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return errFeedExists
			}
			return fmt.Errorf("create feed: %w", err)
		}
		return r.insertEntries(ctx, tx, f.ID, res.Entries, out)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] created feed %q (%s), %d entries", f.Title, f.URL, out.Inserted)
	return out, nil
}

func (r *Reconciler) update(ctx context.Context, existing *domain.Feed, res *feed.Result) (*Outcome, error) {
	f := *existing
	f.Title, f.SiteURL = res.Title, res.SiteURL
	f.ETag, f.LastModified = res.Validators.ETag, res.Validators.LastModified
	now := r.now()
	f.LastRefreshAt = &now

	out := &Outcome{Feed: &f, Status: StatusUpdated}
	err := r.store.InTx(ctx, func(tx *repository.Tx) error {
		*out = Outcome{Feed: &f, Status: StatusUpdated}
		if err := tx.Feed.UpdateFetched(ctx, &f, now); err != nil {
			return fmt.Errorf("update feed: %w", err)
		}
		return r.insertEntries(ctx, tx, f.ID, res.Entries, out)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] refreshed feed %d (%s), %d new, %d seen", f.ID, f.URL, out.Inserted, out.Skipped)
	return out, nil
}

func (r *Reconciler) touch(ctx context.Context, existing *domain.Feed, status Status, fetchErr error) (*Outcome, error) {
	f := *existing
	now := r.now()
	f.LastRefreshAt = &now
	err := r.store.InTx(ctx, func(tx *repository.Tx) error {
		return tx.Feed.Touch(ctx, f.ID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("record refresh attempt: %w", err)
	}
	return &Outcome{Feed: &f, Status: status, Err: fetchErr}, nil
}

// insertEntries stores entries in document order, repeated guids collapse to the first one
func (r *Reconciler) insertEntries(ctx context.Context, tx *repository.Tx, feedID int64, entries []feed.Entry, out *Outcome) error {
	seen := make(map[string]struct{}, len(entries))
	now := r.now()
	for _, e := range entries {
		if _, dup := seen[e.GUID]; dup {
			out.Skipped++
			continue
		}
		seen[e.GUID] = struct{}{}

		entry := &domain.Entry{
			FeedID:    feedID,
			GUID:      e.GUID,
			Title:     e.Title,
			Author:    e.Author,
			URL:       e.URL,
			Content:   e.Content,
			Published: e.Published,
			CreatedAt: now,
		}
		inserted, err := tx.Entry.Insert(ctx, entry)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.GUID, err)
		}
		if inserted {
			out.Inserted++
			continue
		}
		out.Skipped++
	}
	return nil
}
