// Package pg implements the account, job and application stores on
// PostgreSQL through database/sql, the pgx driver and sqlx.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"jobkonnect.org/internal/accounts"
	"jobkonnect.org/internal/applications"
	"jobkonnect.org/internal/jobs"
)

const driverName = "pgx"

type Store struct {
	db *sqlx.DB
}

var (
	_ accounts.Store     = (*Store)(nil)
	_ jobs.Store         = (*Store)(nil)
	_ applications.Store = (*Store)(nil)
)

// PoolOptions bounds the connection pool.
type PoolOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects lazily; call Ping to verify connectivity.
func Open(dsn string, pool PoolOptions) (*Store, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle, e.g. a sqlmock connection in tests.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, driverName)}
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for migrations and readiness probes.
func (s *Store) DB() *sql.DB { return s.db.DB }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
