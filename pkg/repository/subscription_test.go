package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

func TestSubscriptionRepository(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	feedX, entriesX := seed(t, repos, "alice", "https://x.example.com/rss", "a", "b")
	feedY, _ := seed(t, repos, "alice", "https://y.example.com/rss", "c")

	t.Run("duplicate is conflict", func(t *testing.T) {
		err := repos.Subscription.Create(ctx, domain.Subscription{Username: "alice", FeedID: feedX.ID})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("exists and count", func(t *testing.T) {
		ok, err := repos.Subscription.Exists(ctx, "alice", feedX.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repos.Subscription.Exists(ctx, "bob", feedX.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		n, err := repos.Subscription.CountByFeed(ctx, feedY.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("summaries with unread counts", func(t *testing.T) {
		require.NoError(t, repos.ReadMarker.Mark(ctx, "alice", []int64{entriesX[0].ID}, time.Now()))
		res, err := repos.Subscription.ListSummaries(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, feedX.ID, res[0].ID)
		assert.Equal(t, feedX.URL, res[0].URL)
		assert.Equal(t, 1, res[0].Unread)
		assert.Equal(t, feedY.ID, res[1].ID)
		assert.Equal(t, 1, res[1].Unread)

		none, err := repos.Subscription.ListSummaries(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		removed, err := repos.Subscription.Delete(ctx, "alice", feedY.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = repos.Subscription.Delete(ctx, "alice", feedY.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("unknown user or feed violates foreign keys", func(t *testing.T) {
		err := repos.Subscription.Create(ctx, domain.Subscription{Username: "ghost", FeedID: feedX.ID})
		require.Error(t, err)
		err = repos.Subscription.Create(ctx, domain.Subscription{Username: "alice", FeedID: 999})
		require.Error(t, err)
	})
}

func TestUserRepository(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := &domain.User{Username: "alice", PasswordHash: "$2a$hash"}
	require.NoError(t, repos.User.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repos.User.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", got.PasswordHash)

	err = repos.User.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x"})
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = repos.User.Get(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("delete cascades to subscriptions and read markers", func(t *testing.T) {
		feed, entries := seed(t, repos, "alice", "https://x.example.com/rss", "a")
		require.NoError(t, repos.ReadMarker.Mark(ctx, "alice", []int64{entries[0].ID}, time.Now()))

		require.NoError(t, repos.User.Delete(ctx, "alice"))

		n, err := repos.Subscription.CountByFeed(ctx, feed.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		markers, err := repos.ReadMarker.CountByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Zero(t, markers)

		// feed and entries stay
		count, err := repos.Entry.Count(ctx, feed.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.ErrorIs(t, repos.User.Delete(ctx, "alice"), domain.ErrNotFound)
	})
}
