package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/ingest"
	"github.com/umputun/feedkeeper/pkg/scheduler/mocks"
)

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(Params{Feeds: &mocks.FeedListerMock{}, Refresher: &mocks.RefresherMock{}})
	assert.Equal(t, 30*time.Minute, s.updateInterval)
	assert.Equal(t, 30*time.Minute, s.staleAfter)
	assert.Equal(t, 5, s.maxWorkers)

	s = NewScheduler(Params{UpdateInterval: time.Minute, StaleAfter: time.Hour, MaxWorkers: 2})
	assert.Equal(t, time.Minute, s.updateInterval)
	assert.Equal(t, time.Hour, s.staleAfter)
	assert.Equal(t, 2, s.maxWorkers)
}

func TestScheduler_RunRefreshTick(t *testing.T) {
	feeds := []domain.Feed{
		{ID: 1, URL: "https://one.example.com/rss"},
		{ID: 2, URL: "https://two.example.com/rss"},
		{ID: 3, URL: "https://three.example.com/rss"},
		{ID: 4, URL: "https://four.example.com/rss"},
		{ID: 5, URL: "https://five.example.com/rss"},
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lister := &mocks.FeedListerMock{
		ListStaleFunc: func(ctx context.Context, cutoff time.Time) ([]domain.Feed, error) {
			assert.Equal(t, now.Add(-time.Hour), cutoff)
			return feeds, nil
		},
	}
	refresher := &mocks.RefresherMock{
		RefreshFunc: func(ctx context.Context, f domain.Feed) (*ingest.Outcome, error) {
			switch f.ID {
			case 2:
				return &ingest.Outcome{Feed: &f, Status: ingest.StatusFailed,
					Err: &feed.FetchError{Kind: feed.KindNetwork, URL: f.URL, Status: 500, Err: errors.New("unexpected status code: 500")}}, nil
			case 3:
				return nil, fmt.Errorf("refresh %s: %w", f.URL, ingest.ErrBusy)
			case 4:
				return nil, errors.New("database is gone")
			}
			return &ingest.Outcome{Feed: &f, Status: ingest.StatusUpdated, Inserted: 1}, nil
		},
	}

	s := NewScheduler(Params{Feeds: lister, Refresher: refresher, UpdateInterval: time.Minute, StaleAfter: time.Hour, MaxWorkers: 2})
	s.now = func() time.Time { return now }
	report := s.RunRefreshTick(context.Background())

	assert.Equal(t, 5, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failed, 2)
	failedIDs := map[int64]string{}
	for _, f := range report.Failed {
		failedIDs[f.FeedID] = f.Reason
	}
	assert.Contains(t, failedIDs[2], "status 500")
	assert.Contains(t, failedIDs[4], "database is gone")
	assert.Len(t, refresher.RefreshCalls(), 5)
	assert.Len(t, lister.ListStaleCalls(), 1)
}

func TestScheduler_RunRefreshTick_ListError(t *testing.T) {
	lister := &mocks.FeedListerMock{
		ListStaleFunc: func(context.Context, time.Time) ([]domain.Feed, error) {
			return nil, errors.New("db error")
		},
	}
	refresher := &mocks.RefresherMock{}
	report := NewScheduler(Params{Feeds: lister, Refresher: refresher}).RunRefreshTick(context.Background())
	assert.Zero(t, report.Attempted)
	assert.Empty(t, report.Failed)
	assert.Empty(t, refresher.RefreshCalls())
}

func TestScheduler_RunRefreshTick_BoundedConcurrency(t *testing.T) {
	feeds := make([]domain.Feed, 12)
	for i := range feeds {
		feeds[i] = domain.Feed{ID: int64(i + 1), URL: fmt.Sprintf("https://f%d.example.com/rss", i)}
	}
	lister := &mocks.FeedListerMock{
		ListStaleFunc: func(context.Context, time.Time) ([]domain.Feed, error) { return feeds, nil },
	}
	var inFlight, maxInFlight int32
	var mu sync.Mutex
	refresher := &mocks.RefresherMock{
		RefreshFunc: func(ctx context.Context, f domain.Feed) (*ingest.Outcome, error) {
			n := atomic.AddInt32(&inFlight, 1)
			mu.Lock()
			if n > maxInFlight {
				maxInFlight = n
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return &ingest.Outcome{Feed: &f, Status: ingest.StatusUnchanged}, nil
		},
	}

	report := NewScheduler(Params{Feeds: lister, Refresher: refresher, MaxWorkers: 3}).RunRefreshTick(context.Background())
	assert.Equal(t, 12, report.Succeeded)
	assert.LessOrEqual(t, maxInFlight, int32(3))
	assert.Greater(t, maxInFlight, int32(1), "feeds refresh concurrently")
}

func TestScheduler_StartStop(t *testing.T) {
	lister := &mocks.FeedListerMock{
		ListStaleFunc: func(context.Context, time.Time) ([]domain.Feed, error) { return []domain.Feed{}, nil },
	}
	s := NewScheduler(Params{Feeds: lister, Refresher: &mocks.RefresherMock{}, UpdateInterval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	calls := len(lister.ListStaleCalls())
	assert.GreaterOrEqual(t, calls, 2, "immediate tick plus ticker")
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, lister.ListStaleCalls(), calls, "no ticks after stop")
}
