package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures the store-specific parts of the adapter: how an insert
// yields the generated key, and how a unique-index violation is reported.
type Dialect interface {
	// Name returns the database/sql driver name the dialect targets.
	Name() string
	// InsertPost inserts a row inside tx and returns the id the store
	// assigned to it. The id must be obtained on tx's own connection.
	InsertPost(ctx context.Context, tx *sqlx.Tx, title, slug, body string) (int64, error)
	IsUniqueViolation(err error) bool
}

var (
	// SQLite reads the generated key with last_insert_rowid(), which is
	// scoped to the connection the transaction is pinned to.
	SQLite Dialect = sqliteDialect{}
	// Postgres asks for the key in the insert itself.
	Postgres Dialect = postgresDialect{}
)

// DialectFor maps a driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Name():
		return SQLite, nil
	case Postgres.Name():
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

const insertPostSQL = `INSERT INTO posts (title, slug, body) VALUES (?, ?, ?)`

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite3" }

func (sqliteDialect) InsertPost(ctx context.Context, tx *sqlx.Tx, title, slug, body string) (int64, error) {
	if _, err := tx.ExecContext(ctx, tx.Rebind(insertPostSQL), title, slug, body); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowxContext(ctx, `SELECT last_insert_rowid()`).Scan(&id); err != nil {
		return 0, fmt.Errorf("read last_insert_rowid: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("read last_insert_rowid: got %d", id)
	}
	return id, nil
}

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) InsertPost(ctx context.Context, tx *sqlx.Tx, title, slug, body string) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, tx.Rebind(insertPostSQL+` RETURNING id`), title, slug, body).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation
}
