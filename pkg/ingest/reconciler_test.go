package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/repository"
)

const blogURL = "https://x.example.com/rss"

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := repository.NewRepositories(context.Background(), repository.Config{DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

func blogResult(guids ...string) *feed.Result {
	res := &feed.Result{
		Title:      "Blog X",
		SiteURL:    "https://x.example.com",
		Validators: feed.Validators{ETag: `"v1"`, LastModified: "Mon, 01 Jan 2024 00:00:00 GMT"},
	}
	for i, g := range guids {
		res.Entries = append(res.Entries, feed.Entry{
			GUID:      g,
			Title:     "post " + g,
			URL:       "https://x.example.com/" + g,
			Content:   "<p>" + g + "</p>",
			Published: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}
	return res
}

func fixedClock(r *Reconciler, ts time.Time) { r.now = func() time.Time { return ts } }

func TestReconciler_NewFeed(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	r := NewReconciler(repos)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fixedClock(r, t0)

	out, err := r.Reconcile(ctx, nil, blogURL, blogResult("a", "b"), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, out.Status)
	assert.Equal(t, 2, out.Inserted)
	require.NotZero(t, out.Feed.ID)

	stored, err := repos.Feed.Get(ctx, out.Feed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blog X", stored.Title)
	assert.Equal(t, `"v1"`, stored.ETag)
	assert.Equal(t, t0, *stored.LastRefreshAt)

	entries, err := repos.Entry.ListByFeed(ctx, stored.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].GUID, "document order kept")
	assert.Equal(t, "b", entries[1].GUID)

	t.Run("second reconcile of the same document inserts nothing", func(t *testing.T) {
		out, err := r.Reconcile(ctx, stored, blogURL, blogResult("a", "b"), nil)
		require.NoError(t, err)
		assert.Equal(t, StatusUpdated, out.Status)
		assert.Zero(t, out.Inserted)
		assert.Equal(t, 2, out.Skipped)
		count, err := repos.Entry.Count(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestReconciler_NewFeedFailure(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	r := NewReconciler(repos)

	fetchErr := &feed.FetchError{Kind: feed.KindParse, URL: blogURL, Err: errors.New("feed has no title")}
	out, err := r.Reconcile(ctx, nil, blogURL, nil, fetchErr)
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Nil(t, out)

	_, err = r.Reconcile(ctx, nil, blogURL, &feed.Result{NotModified: true}, nil)
	require.ErrorIs(t, err, domain.ErrNetwork)

	_, err = r.Reconcile(ctx, nil, blogURL, nil, nil)
	require.ErrorIs(t, err, domain.ErrNetwork)

	feeds, err := repos.Feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, feeds, "nothing persisted")
}

func TestReconciler_DuplicateGUIDsInDocument(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	res := blogResult("a", "b", "a")
	res.Entries[2].Title = "second copy"

	out, err := NewReconciler(repos).Reconcile(ctx, nil, blogURL, res, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Inserted)
	assert.Equal(t, 1, out.Skipped)

	entries, err := repos.Entry.ListByFeed(ctx, out.Feed.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "post a", entries[0].Title, "first occurrence wins")
}

func TestReconciler_ExistingFeed(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	setup := func(t *testing.T) (*repository.Repositories, *Reconciler, *domain.Feed) {
		repos := setupRepos(t)
		r := NewReconciler(repos)
		fixedClock(r, t0)
		out, err := r.Reconcile(ctx, nil, blogURL, blogResult("a", "b"), nil)
		require.NoError(t, err)
		fixedClock(r, t1)
		return repos, r, out.Feed
	}

	t.Run("not modified changes only refresh time", func(t *testing.T) {
		repos, r, f := setup(t)
		before, err := repos.Feed.Get(ctx, f.ID)
		require.NoError(t, err)
		entriesBefore, err := repos.Entry.ListByFeed(ctx, f.ID)
		require.NoError(t, err)

		out, err := r.Reconcile(ctx, before, blogURL, &feed.Result{NotModified: true, Validators: feed.Validators{ETag: `"v9"`}}, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusUnchanged, out.Status)

		after, err := repos.Feed.Get(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, t1, *after.LastRefreshAt)
		if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(domain.Feed{}, "LastRefreshAt")); diff != "" {
			t.Errorf("feed changed beyond refresh time (-before +after):\n%s", diff)
		}
		entriesAfter, err := repos.Entry.ListByFeed(ctx, f.ID)
		require.NoError(t, err)
		assert.True(t, cmp.Equal(entriesBefore, entriesAfter), "entries byte-identical")
	})

	t.Run("success inserts new entries and updates metadata", func(t *testing.T) {
		repos, r, f := setup(t)
		res := blogResult("c", "a", "b")
		res.Title, res.SiteURL = "Blog X renamed", "https://x2.example.com"
		res.Validators = feed.Validators{ETag: `"v2"`}
		res.Entries[1].Title = "edited a"

		out, err := r.Reconcile(ctx, f, blogURL, res, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusUpdated, out.Status)
		assert.Equal(t, 1, out.Inserted)
		assert.Equal(t, 2, out.Skipped)

		stored, err := repos.Feed.Get(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, "Blog X renamed", stored.Title)
		assert.Equal(t, "https://x2.example.com", stored.SiteURL)
		assert.Equal(t, `"v2"`, stored.ETag)
		assert.Empty(t, stored.LastModified)
		assert.Equal(t, t1, *stored.LastRefreshAt)

		entries, err := repos.Entry.ListByFeed(ctx, f.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "post a", entries[0].Title, "existing entries are immutable")
		assert.Equal(t, "c", entries[2].GUID)
	})

	t.Run("failure records attempt and reports error", func(t *testing.T) {
		repos, r, f := setup(t)
		fetchErr := &feed.FetchError{Kind: feed.KindNetwork, URL: blogURL, Status: 503, Err: errors.New("unavailable")}
		out, err := r.Reconcile(ctx, f, blogURL, nil, fetchErr)
		require.NoError(t, err, "fetch failure is not fatal for an existing feed")
		assert.Equal(t, StatusFailed, out.Status)
		require.ErrorIs(t, out.Err, domain.ErrNetwork)

		stored, err := repos.Feed.Get(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, t1, *stored.LastRefreshAt)
		assert.Equal(t, "Blog X", stored.Title)
		assert.Equal(t, `"v1"`, stored.ETag, "validators kept on failure")
	})
}

// failingTx commits nothing, every case fails after its writes
type failingTx struct {
	repos *repository.Repositories
}

func (f failingTx) InTx(ctx context.Context, fn func(tx *repository.Tx) error) error {
	return f.repos.InTx(ctx, func(tx *repository.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errors.New("injected failure")
	})
}

func TestReconciler_RollbackOnError(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	_, err := NewReconciler(failingTx{repos: repos}).Reconcile(ctx, nil, blogURL, blogResult("a", "b"), nil)
	require.Error(t, err)
	feeds, err := repos.Feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, feeds)

	out, err := NewReconciler(repos).Reconcile(ctx, nil, blogURL, blogResult("a"), nil)
	require.NoError(t, err)
	_, err = NewReconciler(failingTx{repos: repos}).Reconcile(ctx, out.Feed, blogURL, blogResult("a", "b", "c"), nil)
	require.Error(t, err)
	count, err := repos.Entry.Count(ctx, out.Feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "partial insert rolled back")
}

func TestReconciler_ConcurrentFirstFetch(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "race.db") + "?mode=rwc"
	ctx := context.Background()
	repos, err := repository.NewRepositories(ctx, repository.Config{DSN: dsn, MaxOpenConns: 8})
	require.NoError(t, err)
	defer repos.Close()

	// separate reconcilers without shared locks, the unique constraint is the only guard
	const writers = 8
	var wg sync.WaitGroup
	outs := make([]*Outcome, writers)
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[i], errs[i] = NewReconciler(repos).Reconcile(ctx, nil, blogURL, blogResult("a", "b"), nil)
		}()
	}
	wg.Wait()

	created := 0
	for i := range writers {
		require.NoError(t, errs[i])
		if outs[i].Status == StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)

	feeds, err := repos.Feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	count, err := repos.Entry.Count(ctx, feeds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
