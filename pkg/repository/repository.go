package repository

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps dialect and base fs in globals
var migrateMu sync.Mutex

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Config represents database configuration
type Config struct {
	DSN             string // sqlite file/dsn or postgres:// url
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Repositories contains all repository instances
type Repositories struct {
	Feed         *FeedRepository
	Entry        *EntryRepository
	Subscription *SubscriptionRepository
	ReadMarker   *ReadMarkerRepository
	User         *UserRepository
	DB           *sqlx.DB
}

// NewRepositories creates all repositories with a shared database connection and applies migrations.
// DSN starting with postgres:// or postgresql:// selects PostgreSQL, anything else is SQLite.
func NewRepositories(ctx context.Context, cfg Config) (*Repositories, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:feedkeeper.db?mode=rwc&_txlock=immediate"
	}

	driver := driverName(cfg.DSN)
	dsn := cfg.DSN
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == "sqlite" {
		// optimize SQLite settings
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA cache_size = -64000", // 64MB cache
			"PRAGMA temp_store = MEMORY",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("execute %s: %w", pragma, err)
			}
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepositories(db), nil
}

func newRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Feed:         NewFeedRepository(db),
		Entry:        NewEntryRepository(db),
		Subscription: NewSubscriptionRepository(db),
		ReadMarker:   NewReadMarkerRepository(db),
		User:         NewUserRepository(db),
		DB:           db,
	}
}

// Close closes the database connection
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// Ping verifies the database connection
func (r *Repositories) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// InTx runs fn in a transaction with repositories bound to it. The transaction is committed if fn
// returns nil and rolled back otherwise. Lock errors restart the whole transaction with backoff.
func (r *Repositories) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return withRetry(ctx, func() error {
		sqlTx, err := r.DB.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = sqlTx.Rollback() }() // no-op after commit

		if err := fn(newTx(sqlTx)); err != nil {
			return err
		}
		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

// driverName picks the sql driver for dsn
func driverName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// sqliteDSN adds connection-level pragmas, applied by the driver to every pooled connection
func sqliteDSN(dsn string) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// migrate applies embedded goose migrations for the connection's dialect
func migrate(ctx context.Context, db *sqlx.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if db.DriverName() == "postgres" {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set dialect %s: %w", dialect, err)
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("apply %s: %w", dir, err)
	}

	if version, err := goose.GetDBVersionContext(ctx, db.DB); err == nil {
		log.Printf("[DEBUG] database schema version %d", version)
	}
	return nil
}
