package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
)

// ErrBusy is returned by Refresh when the feed is already being fetched
var ErrBusy = errors.New("feed refresh in progress")

// Fetcher retrieves a feed document, feed.Pool and feed.Fetcher implement it
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string, v feed.Validators) (*feed.Result, error)
}

// FeedFinder looks up stored feeds
type FeedFinder interface {
	Get(ctx context.Context, id int64) (*domain.Feed, error)
	GetByURL(ctx context.Context, feedURL string) (*domain.Feed, error)
}

// Ingester runs fetch and reconcile for a feed while holding the feed's lock. Locks are keyed by
// feed URL, shared by a first subscription to a URL and refreshes of the stored row.
type Ingester struct {
	fetcher      Fetcher
	reconciler   *Reconciler
	feeds        FeedFinder
	locks        *KeyedLock
	fetchTimeout time.Duration
}

// NewIngester makes an ingester. fetchTimeout bounds the fetch step only, zero means no extra bound.
func NewIngester(fetcher Fetcher, reconciler *Reconciler, feeds FeedFinder, fetchTimeout time.Duration) *Ingester {
	return &Ingester{
		fetcher:      fetcher,
		reconciler:   reconciler,
		feeds:        feeds,
		locks:        NewKeyedLock(),
		fetchTimeout: fetchTimeout,
	}
}

// Refresh fetches and reconciles a stored feed. Returns ErrBusy without fetching if another
// refresh or creation of the same feed is running. Fetch failures are reported in Outcome.
func (i *Ingester) Refresh(ctx context.Context, f domain.Feed) (*Outcome, error) {
	unlock, ok := i.locks.TryLock(f.URL)
	if !ok {
		return nil, fmt.Errorf("refresh %s: %w", f.URL, ErrBusy)
	}
	defer unlock()

	// validators may have changed since the caller loaded the feed
	current, err := i.feeds.Get(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("load feed %d: %w", f.ID, err)
	}

	res, fetchErr := i.fetch(ctx, current.URL, feed.Validators{ETag: current.ETag, LastModified: current.LastModified})
	return i.reconciler.Reconcile(ctx, current, current.URL, res, fetchErr)
}

// Create returns the stored feed for feedURL, fetching and storing it first if it is unknown.
// Waits for a concurrent creation or refresh of the same URL. Fetch failures are returned as errors.
func (i *Ingester) Create(ctx context.Context, feedURL string) (*domain.Feed, error) {
	unlock, err := i.locks.Lock(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("wait for feed lock: %w", err)
	}
	defer unlock()

	existing, err := i.feeds.GetByURL(ctx, feedURL)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find feed: %w", err)
	}

	res, fetchErr := i.fetch(ctx, feedURL, feed.Validators{})
	out, err := i.reconciler.Reconcile(ctx, nil, feedURL, res, fetchErr)
	if err != nil {
		return nil, err
	}
	return out.Feed, nil
}

// Busy reports whether the feed URL is locked by a running ingestion
func (i *Ingester) Busy(feedURL string) bool {
	return i.locks.Held(feedURL)
}

// fetch bounds the fetch step so a slow source still gets its attempt recorded
func (i *Ingester) fetch(ctx context.Context, feedURL string, v feed.Validators) (*feed.Result, error) {
	if i.fetchTimeout <= 0 {
		return i.fetcher.Fetch(ctx, feedURL, v)
	}
	fctx, cancel := context.WithTimeout(ctx, i.fetchTimeout)
	defer cancel()
	return i.fetcher.Fetch(fctx, feedURL, v)
}
