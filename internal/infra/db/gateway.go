// Package db is the single choke point through which all SQL statements reach
// the persistence store. It owns connection acquisition and the translation
// of driver-level failures into the domain error taxonomy; raw driver errors
// never leave this package except through the process log.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/mkrupp/catalog-manager/internal/domain"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
)

// GatewayConfig holds configuration for the persistence gateway.
type GatewayConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/catalogmgr.db"`

	// BusyTimeoutMillis is how long a statement waits on a locked database
	BusyTimeoutMillis int64 `env:"BUSY_TIMEOUT_MILLIS" default:"5000"`
}

// RowScanner is the part of *sql.Rows a scan callback is allowed to touch.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc copies one result row into a typed record. It runs while the
// row set is still open and must not retain the scanner.
type ScanFunc func(row RowScanner) error

// Gateway executes single parameterized statements against the store. Each
// call checks a dedicated connection out of the pool and returns it on every
// exit path.
type Gateway struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // the sqlite driver does not support concurrent writers
}

// GatewayFactory creates a factory function that returns a new Gateway.
type GatewayFactory func() (*Gateway, error)

// NewGatewayFactory returns a GatewayFactory for the given configuration.
func NewGatewayFactory(cfg GatewayConfig) GatewayFactory {
	return func() (*Gateway, error) {
		return NewGateway(cfg)
	}
}

// SharedGatewayFactory returns a GatewayFactory that always hands out gw.
// Repositories built from it share one connection pool and one write lock.
func SharedGatewayFactory(gw *Gateway) GatewayFactory {
	return func() (*Gateway, error) {
		return gw, nil
	}
}

// NewGateway opens the database and verifies connectivity.
// Returns ErrDatabaseConnection if the store cannot be reached.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	log := logging.GetLogger("infra.db.gateway").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	sqlDB, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Error("open db failed", "error", err)

		return nil, fmt.Errorf("open db: %w", domain.ErrDatabaseConnection)
	}

	if err := sqlDB.Ping(); err != nil {
		log.Error("ping db failed", "error", err)

		return nil, fmt.Errorf("ping db: %w", domain.ErrDatabaseConnection)
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if _, err := sqlDB.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMillis)); err != nil {
		log.Error("set busy timeout failed", "error", err)

		return nil, fmt.Errorf("set busy timeout: %w", domain.ErrDatabaseConnection)
	}

	return &Gateway{
		db:        sqlDB,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

// Insert executes a single INSERT statement in its own transaction and
// returns the generated row id. The transaction is rolled back before any
// failure is reported.
func (g *Gateway) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := g.mutate(ctx, query, args)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, g.driverFailure(ctx, "last insert id", err)
	}

	return id, nil
}

// Mutate executes a single UPDATE or DELETE statement in its own transaction
// and returns the number of affected rows. The transaction is rolled back
// before any failure is reported.
func (g *Gateway) Mutate(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := g.mutate(ctx, query, args)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, g.driverFailure(ctx, "rows affected", err)
	}

	return affected, nil
}

func (g *Gateway) mutate(ctx context.Context, query string, args []any) (sql.Result, error) {
	g.writeLock.Lock()
	defer g.writeLock.Unlock()

	conn, err := g.db.Conn(ctx)
	if err != nil {
		return nil, g.driverFailure(ctx, "acquire connection", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, g.driverFailure(ctx, "begin transaction", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()

		return nil, g.driverFailure(ctx, "execute statement", err)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()

		return nil, g.driverFailure(ctx, "commit", err)
	}

	return result, nil
}

// FetchOne executes a single SELECT statement and scans the first matching
// row through scan. Returns false without error when no row matches.
func (g *Gateway) FetchOne(ctx context.Context, query string, args []any, scan ScanFunc) (bool, error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return false, g.driverFailure(ctx, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return false, g.driverFailure(ctx, "execute query", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, g.driverFailure(ctx, "read row", err)
		}

		return false, nil
	}

	if err := scan(rows); err != nil {
		return false, fmt.Errorf("scan row: %w", err)
	}

	return true, nil
}

// FetchAll executes a single SELECT statement and scans every matching row
// through scan, in statement order.
func (g *Gateway) FetchAll(ctx context.Context, query string, args []any, scan ScanFunc) error {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return g.driverFailure(ctx, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return g.driverFailure(ctx, "execute query", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return g.driverFailure(ctx, "read rows", err)
	}

	return nil
}

// Close releases the underlying database handle.
func (g *Gateway) Close() error {
	if err := g.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// driverFailure logs the raw driver error and returns the generic
// ErrDatabaseConnection sentinel in its place.
func (g *Gateway) driverFailure(ctx context.Context, op string, err error) error {
	g.log.ErrorContext(ctx, "database operation failed", "op", op, "error", err)

	return fmt.Errorf("%s: %w", op, domain.ErrDatabaseConnection)
}
