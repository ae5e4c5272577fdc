package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	app "github.com/R3E-Network/blog_service/internal/app"
	"github.com/R3E-Network/blog_service/internal/app/storage/sqlstore"
	"github.com/R3E-Network/blog_service/internal/platform/database"
	"github.com/R3E-Network/blog_service/internal/platform/schema"
)

func TestSQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "blog.db"), MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := schema.Apply(ctx, db, "sqlite3"); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	h := newTestHandler(t, app.Stores{Posts: sqlstore.New(db, sqlstore.SQLite), DB: db})

	resp := do(t, h, http.MethodPost, "/posts", marshal(CreatePostRequest{Title: "Hello", Slug: "hello", Body: "World"}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.Code, resp.Body.String())
	}
	var created PostResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp := do(t, h, http.MethodPost, "/posts", marshal(CreatePostRequest{Title: "Again", Slug: "hello", Body: "x"})); resp.Code != http.StatusConflict {
		t.Fatalf("duplicate slug: %d", resp.Code)
	}

	path := fmt.Sprintf("/posts/%d", created.ID)
	resp = do(t, h, http.MethodPut, path, marshal(UpdatePostRequest{Title: "Hello2", Body: "World2"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("update: %d %s", resp.Code, resp.Body.String())
	}
	if resp := do(t, h, http.MethodDelete, path, nil); resp.Code != http.StatusOK {
		t.Fatalf("delete: %d", resp.Code)
	}
	if resp := do(t, h, http.MethodGet, path, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", resp.Code)
	}
	if resp := do(t, h, http.MethodGet, "/health", nil); resp.Code != http.StatusOK {
		t.Fatalf("health: %d", resp.Code)
	}
}
