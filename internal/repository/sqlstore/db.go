// Package sqlstore implements the repository interfaces on database/sql.
//
// Two drivers are supported:
//   - "postgres" (github.com/lib/pq), the production backend
//   - "sqlite"   (modernc.org/sqlite), pure Go, used by tests and local runs
//
// The driver decides the placeholder style ($1 vs ?). Every statement runs
// inside its own transaction on a connection acquired under
// Config.AcquireTimeout, and every failure leaving this package is an
// *apperror.AppError.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Drivers register themselves with database/sql in init().
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes the connection pool.
type Config struct {
	Driver string // DriverPostgres (default) or DriverSQLite
	DSN    string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	// AcquireTimeout bounds how long a request waits for a pooled
	// connection. Zero waits indefinitely.
	AcquireTimeout time.Duration

	Hooks  []Hook
	Logger *slog.Logger
}

// DB wraps a sql.DB connection pool shared by all requests.
type DB struct {
	conn           *sql.DB
	placeholder    Placeholder
	hooks          hookChain
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// Open creates the pool and verifies connectivity with a ping.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlstore: DSN must not be empty")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	ph, err := placeholderFor(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingTimeout := cfg.AcquireTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s: %w", driver, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DB{
		conn:           conn,
		placeholder:    ph,
		hooks:          newHookChain(cfg.Hooks),
		acquireTimeout: cfg.AcquireTimeout,
		logger:         logger,
	}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the backend is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// acquire takes a dedicated connection from the pool. Only the wait is
// bounded by the acquire timeout; the connection itself outlives it.
func (db *DB) acquire(ctx context.Context) (*sql.Conn, error) {
	if db.acquireTimeout <= 0 {
		return db.conn.Conn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()
	return db.conn.Conn(actx)
}

func placeholderFor(driver string) (Placeholder, error) {
	switch driver {
	case DriverPostgres:
		return Dollar, nil
	case DriverSQLite:
		return Question, nil
	default:
		return 0, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
