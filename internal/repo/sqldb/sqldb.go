// Package sqldb opens the relational store shared by the user and task
// repositories. SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are
// supported; queries are written with ? placeholders and rebound per driver.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
)

// Driver names a supported database/sql driver.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported db driver")

//go:embed schema/*.sql
var schemaFS embed.FS

// Config holds configuration for the database connection.
type Config struct {
	// Driver selects the backing engine ("sqlite" or "postgres")
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	// DSN is the SQLite database path or the PostgreSQL connection string
	DSN string `env:"DSN" envDefault:"var/storage/tasksvc.db"`
	// MaxOpenConns limits the connection pool size
	MaxOpenConns int `env:"MAX_OPEN_CONNS" envDefault:"10"`
	// ConnMaxLifetime is the maximum time a pooled connection is reused
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DB is a connection pool plus the dialect knowledge the repositories need.
type DB struct {
	*sql.DB

	driver    Driver
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

// Open connects to the configured database, verifies the connection and
// creates the schema if needed.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))

	log := logging.GetLogger("repo.sqldb").With(
		logging.Group("db", "driver", string(driver)),
	)

	dsn, err := prepareDSN(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	db := &DB{
		DB:        sqlDB,
		driver:    driver,
		log:       log,
		writeLock: new(sync.Mutex),
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := db.initialize(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.DebugContext(ctx, "db opened")

	return db, nil
}

func prepareDSN(driver Driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres:
		return dsn, nil
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return "", fmt.Errorf("create db dir: %w", err)
				}
			}
		}

		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}

		return dsn, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func (db *DB) initialize(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema/" + string(db.driver) + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// Driver reports which engine backs the pool.
func (db *DB) Driver() Driver {
	return db.driver
}

// Rebind converts ? placeholders to the driver's native form.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)

			continue
		}

		n++
		b.WriteString("$" + strconv.Itoa(n))
	}

	return b.String()
}

// LockWrites serializes writers on SQLite and is a no-op on PostgreSQL.
// The returned function releases the lock.
func (db *DB) LockWrites() func() {
	if db.driver != DriverSQLite {
		return func() {}
	}

	db.writeLock.Lock()

	return db.writeLock.Unlock
}

// InTx runs fn inside a transaction, committing if fn returns nil and rolling
// back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", StorageError(err))
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.ErrorContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", StorageError(err))
	}

	return nil
}

// Close implements io.Closer by closing the connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure on either supported driver.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		default:
			return false
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}

	return false
}

// StorageError marks err as a backing-store failure.
func StorageError(err error) error {
	return errors.Join(domain.ErrStorage, err)
}
