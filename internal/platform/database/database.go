// Package database opens the connection pool shared by the SQL store.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPingTimeout bounds the connectivity check performed by Open.
const DefaultPingTimeout = 5 * time.Second

// sqliteBusyTimeoutMS is how long SQLite waits on a locked database before
// reporting SQLITE_BUSY.
const sqliteBusyTimeoutMS = 10000

// Config describes the pool to open.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open creates the pool, applies the limits and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if cfg.Driver == "" {
		return nil, errors.New("database driver not configured")
	}
	if cfg.DSN == "" {
		return nil, errors.New("database dsn not configured")
	}

	dsn := cfg.DSN
	if cfg.Driver == "sqlite3" {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.Driver == "sqlite3" && inMemory(dsn) {
		// Each connection to an in-memory database sees its own empty
		// database, so the pool is pinned to a single long-lived connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}

// SQLiteDSN adds the connection parameters the store relies on: a busy
// timeout, WAL journaling and immediate write locks for transactions.
// Parameters already present in dsn are left untouched.
func SQLiteDSN(dsn string) string {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}

	defaults := map[string]string{
		"_busy_timeout": strconv.Itoa(sqliteBusyTimeoutMS),
		"_txlock":       "immediate",
	}
	if !inMemory(dsn) {
		defaults["_journal_mode"] = "WAL"
	}
	for key, value := range defaults {
		if params.Get(key) == "" {
			params.Set(key, value)
		}
	}
	return base + "?" + params.Encode()
}

func inMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
