// Package schema creates the tables the post store expects. Statements are
// idempotent so Apply can run on every start.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed sqlite.sql
	sqliteSchema string
	//go:embed postgres.sql
	postgresSchema string
)

// Execer is satisfied by *sql.DB, *sql.Conn, *sql.Tx and their sqlx wrappers.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Statements returns the DDL statements for driver in execution order.
func Statements(driver string) ([]string, error) {
	var script string
	switch driver {
	case "sqlite3":
		script = sqliteSchema
	case "postgres":
		script = postgresSchema
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}

	var stmts []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// Apply executes the schema for driver against db.
func Apply(ctx context.Context, db Execer, driver string) error {
	stmts, err := Statements(driver)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
