package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/ingest"
)

//go:generate moq -out mocks/feed_lister.go -pkg mocks -skip-ensure -fmt goimports . FeedLister
//go:generate moq -out mocks/refresher.go -pkg mocks -skip-ensure -fmt goimports . Refresher

// FeedLister selects feeds due for refresh
type FeedLister interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.Feed, error)
}

// Refresher fetches and reconciles a single feed, returns ingest.ErrBusy if the feed is locked
type Refresher interface {
	Refresh(ctx context.Context, f domain.Feed) (*ingest.Outcome, error)
}

// Scheduler periodically refreshes stale feeds
type Scheduler struct {
	feeds          FeedLister
	refresher      Refresher
	updateInterval time.Duration
	staleAfter     time.Duration
	maxWorkers     int
	now            func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Params for scheduler
type Params struct {
	Feeds          FeedLister
	Refresher      Refresher
	UpdateInterval time.Duration // tick interval
	StaleAfter     time.Duration // feeds attempted more recently are not refreshed
	MaxWorkers     int           // concurrent refreshes per tick
}

// TickReport summarizes a single refresh pass
type TickReport struct {
	Attempted int
	Succeeded int
	Skipped   int // locked by a concurrent refresh
	Failed    []FeedFailure
}

// FeedFailure is a feed that could not be refreshed
type FeedFailure struct {
	FeedID int64
	URL    string
	Reason string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.UpdateInterval <= 0 {
		params.UpdateInterval = 30 * time.Minute
	}
	if params.StaleAfter <= 0 {
		params.StaleAfter = params.UpdateInterval
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = 5
	}
	return &Scheduler{
		feeds:          params.Feeds,
		refresher:      params.Refresher,
		updateInterval: params.UpdateInterval,
		staleAfter:     params.StaleAfter,
		maxWorkers:     params.MaxWorkers,
		now:            time.Now,
	}
}

// Start begins the refresh loop in background, first tick runs immediately
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.refreshWorker(ctx)

	lgr.Printf("[INFO] scheduler started with update interval %v, stale after %v, %d workers",
		s.updateInterval, s.staleAfter, s.maxWorkers)
}

// Stop gracefully stops the scheduler, waits for the running tick to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) refreshWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	s.RunRefreshTick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunRefreshTick(ctx)
		}
	}
}

// RunRefreshTick refreshes all stale feeds concurrently, bounded by max workers.
// A failing feed never aborts the tick, failures are collected in the report.
func (s *Scheduler) RunRefreshTick(ctx context.Context) TickReport {
	report := TickReport{Failed: []FeedFailure{}}

	feeds, err := s.feeds.ListStale(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		lgr.Printf("[WARN] failed to list stale feeds: %v", err)
		return report
	}
	if len(feeds) == 0 {
		lgr.Printf("[DEBUG] no stale feeds")
		return report
	}
	lgr.Printf("[INFO] refreshing %d feeds", len(feeds))

	var mu sync.Mutex
	g := errgroup.Group{}
	g.SetLimit(s.maxWorkers)
	for _, f := range feeds {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++

		g.Go(func() error {
			outcome, err := s.refresher.Refresh(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ingest.ErrBusy):
				lgr.Printf("[DEBUG] feed %d (%s) is busy, skipped", f.ID, f.URL)
				report.Skipped++
			case err != nil:
				lgr.Printf("[WARN] failed to refresh feed %d (%s): %v", f.ID, f.URL, err)
				report.Failed = append(report.Failed, FeedFailure{FeedID: f.ID, URL: f.URL, Reason: err.Error()})
			case outcome.Status == ingest.StatusFailed:
				lgr.Printf("[WARN] failed to fetch feed %d (%s): %v", f.ID, f.URL, outcome.Err)
				report.Failed = append(report.Failed, FeedFailure{FeedID: f.ID, URL: f.URL, Reason: failureReason(outcome.Err)})
			default:
				lgr.Printf("[DEBUG] feed %d (%s) %s, %d new entries", f.ID, f.URL, outcome.Status, outcome.Inserted)
				report.Succeeded++
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	lgr.Printf("[INFO] refresh completed, attempted %d, succeeded %d, skipped %d, failed %d",
		report.Attempted, report.Succeeded, report.Skipped, len(report.Failed))
	return report
}

func failureReason(err error) string {
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}
