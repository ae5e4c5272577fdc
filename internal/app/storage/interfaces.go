package storage

import (
	"context"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
)

// PostStore persists posts. Absence is reported through the boolean results,
// never as an error. Every returned error is a *Error, except that CreatePost
// rejects a post with an ID using post.AlreadyPersisted before touching the
// store.
type PostStore interface {
	// ListPosts returns every stored post ordered by id.
	ListPosts(ctx context.Context) ([]post.Post, error)
	GetPost(ctx context.Context, id int64) (post.Post, bool, error)
	GetPostBySlug(ctx context.Context, slug string) (post.Post, bool, error)
	// CreatePost stores an unsaved post (ID 0) and returns it as stored, with
	// its assigned ID.
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	// UpdatePost rewrites title and body of the post with the given id and
	// returns the row as now stored. It reports false when no such row exists.
	UpdatePost(ctx context.Context, id int64, p post.Post) (post.Post, bool, error)
	// DeletePost reports whether a row was removed.
	DeletePost(ctx context.Context, id int64) (bool, error)
}
