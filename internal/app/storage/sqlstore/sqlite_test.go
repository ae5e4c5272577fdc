package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/blog_service/internal/app/storage"
	"github.com/R3E-Network/blog_service/internal/app/storage/storagetest"
	"github.com/R3E-Network/blog_service/internal/platform/database"
	"github.com/R3E-Network/blog_service/internal/platform/schema"
)

// The SQLite contract runs against a file database: every connection to
// ":memory:" opens its own empty database, which would hide pool behaviour.
func TestSQLiteContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.PostStore {
		t.Helper()
		ctx := context.Background()

		db, err := database.Open(ctx, database.Config{
			Driver:       "sqlite3",
			DSN:          filepath.Join(t.TempDir(), "blog.db"),
			MaxOpenConns: 4,
			MaxIdleConns: 4,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		require.NoError(t, schema.Apply(ctx, db.DB, "sqlite3"))
		return New(db, SQLite)
	})
}
