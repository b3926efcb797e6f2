package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

func newMockRepos(t *testing.T) (*Repositories, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newRepositories(sqlx.NewDb(db, "sqlmock")), mock
}

func TestInTx_Mock(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		repos, mock := newMockRepos(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO subscriptions").
			WithArgs("alice", int64(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repos.InTx(ctx, func(tx *Tx) error {
			return tx.Subscription.Create(ctx, domain.Subscription{Username: "alice", FeedID: 1})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on statement error", func(t *testing.T) {
		repos, mock := newMockRepos(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM subscriptions").
			WithArgs("alice", int64(1)).
			WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		err := repos.InTx(ctx, func(tx *Tx) error {
			_, err := tx.Subscription.Delete(ctx, "alice", 1)
			return err
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk I/O error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock error restarts transaction", func(t *testing.T) {
		repos, mock := newMockRepos(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE feeds SET last_refresh_at").
			WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE feeds SET last_refresh_at").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		attempts := 0
		err := repos.InTx(ctx, func(tx *Tx) error {
			attempts++
			return tx.Feed.Touch(ctx, 7, fromUnix(1700000000))
		})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		repos, mock := newMockRepos(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		err := repos.InTx(ctx, func(*Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
