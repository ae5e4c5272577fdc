package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/blog_service/internal/app/services/posts"
	"github.com/R3E-Network/blog_service/internal/app/storage"
	"github.com/R3E-Network/blog_service/internal/app/storage/memory"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// Pinger reports whether a backing store is reachable. *sqlx.DB and *sql.DB
// satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Stores encapsulates persistence dependencies. A nil Posts store defaults to
// the in-memory implementation; a nil DB skips the health ping.
type Stores struct {
	Posts storage.PostStore
	DB    Pinger
}

// Application ties domain services together.
type Application struct {
	log *logger.Logger
	db  Pinger

	Posts *posts.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if stores.Posts == nil {
		log.Warn("no post store configured; using in-memory store")
		stores.Posts = memory.New()
	}

	return &Application{
		log:   log,
		db:    stores.DB,
		Posts: posts.New(stores.Posts, log.With("component", "posts")),
	}
}

// Health pings the database when one is configured.
func (a *Application) Health(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
