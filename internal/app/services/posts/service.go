// Package posts orchestrates post use cases on top of storage.PostStore.
//
// Input is validated before any storage call. Storage failures are wrapped
// with the operation name and returned unchanged in kind; nothing is retried.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/metrics"
	"github.com/R3E-Network/blog_service/internal/app/storage"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// Service exposes the post use cases.
type Service struct {
	store storage.PostStore
	log   *logger.Logger
}

// New constructs a post service.
func New(store storage.PostStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{store: store, log: log}
}

// List returns every post ordered by id.
func (s *Service) List(ctx context.Context) ([]post.Post, error) {
	start := time.Now()
	list, err := s.store.ListPosts(ctx)
	if err != nil {
		err = fmt.Errorf("list posts: %w", err)
	}
	s.observe(ctx, "list", start, true, err)
	return list, err
}

// Get returns the post with id. The bool is false when no such post exists.
func (s *Service) Get(ctx context.Context, id int64) (post.Post, bool, error) {
	start := time.Now()
	if id <= 0 {
		err := post.InvalidID(id)
		s.observe(ctx, "get", start, true, err)
		return post.Post{}, false, err
	}

	p, found, err := s.store.GetPost(ctx, id)
	if err != nil {
		err = fmt.Errorf("get post %d: %w", id, err)
	}
	s.observe(ctx, "get", start, found, err)
	return p, found, err
}

// GetBySlug returns the post whose slug matches exactly.
func (s *Service) GetBySlug(ctx context.Context, slug string) (post.Post, bool, error) {
	start := time.Now()
	if strings.TrimSpace(slug) == "" {
		err := &post.ValidationError{Field: "slug", Message: "slug cannot be empty"}
		s.observe(ctx, "get_by_slug", start, true, err)
		return post.Post{}, false, err
	}

	p, found, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		err = fmt.Errorf("get post by slug %q: %w", slug, err)
	}
	s.observe(ctx, "get_by_slug", start, found, err)
	return p, found, err
}

// Create validates and persists a new post. Slug collisions are reported by
// the store as storage.ErrSlugTaken.
func (s *Service) Create(ctx context.Context, title, slug, body string) (post.Post, error) {
	start := time.Now()
	p := post.New(title, slug, body)
	if err := p.Validate(); err != nil {
		s.observe(ctx, "create", start, true, err)
		return post.Post{}, err
	}

	created, err := s.store.CreatePost(ctx, p)
	if err != nil {
		err = fmt.Errorf("create post: %w", err)
		s.observe(ctx, "create", start, true, err)
		return post.Post{}, err
	}
	s.observe(ctx, "create", start, true, nil)
	s.log.WithContext(ctx).
		WithField("post_id", created.ID).
		WithField("slug", created.Slug).
		Info("post created")
	return created, nil
}

// Update replaces the title and body of an existing post. The read and the
// write are separate store calls, so concurrent updates of the same post
// resolve as last writer wins.
func (s *Service) Update(ctx context.Context, id int64, title, body string) (post.Post, bool, error) {
	start := time.Now()
	if id <= 0 {
		err := post.InvalidID(id)
		s.observe(ctx, "update", start, true, err)
		return post.Post{}, false, err
	}

	current, found, err := s.store.GetPost(ctx, id)
	if err != nil {
		err = fmt.Errorf("update post %d: %w", id, err)
		s.observe(ctx, "update", start, true, err)
		return post.Post{}, false, err
	}
	if !found {
		s.observe(ctx, "update", start, false, nil)
		return post.Post{}, false, nil
	}

	current.Update(title, body)
	if err := current.Validate(); err != nil {
		s.observe(ctx, "update", start, true, err)
		return post.Post{}, false, err
	}

	updated, found, err := s.store.UpdatePost(ctx, id, current)
	if err != nil {
		err = fmt.Errorf("update post %d: %w", id, err)
	}
	s.observe(ctx, "update", start, found, err)
	if err == nil && found {
		s.log.WithContext(ctx).WithField("post_id", id).Info("post updated")
	}
	return updated, found, err
}

// Delete removes the post with id. It reports whether a post was removed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	if id <= 0 {
		err := post.InvalidID(id)
		s.observe(ctx, "delete", start, true, err)
		return false, err
	}

	removed, err := s.store.DeletePost(ctx, id)
	if err != nil {
		err = fmt.Errorf("delete post %d: %w", id, err)
	}
	s.observe(ctx, "delete", start, removed, err)
	if err == nil && removed {
		s.log.WithContext(ctx).WithField("post_id", id).Info("post deleted")
	}
	return removed, err
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, found bool, err error) {
	outcome := outcomeOf(found, err)
	metrics.RecordPostOperation(op, outcome, time.Since(start))

	switch outcome {
	case metrics.OutcomeError:
		s.log.WithContext(ctx).WithError(err).WithField("operation", op).Warn("post operation failed")
	case metrics.OutcomeInvalid, metrics.OutcomeConflict:
		s.log.WithContext(ctx).WithError(err).WithField("operation", op).Debug("post operation rejected")
	}
}

func outcomeOf(found bool, err error) string {
	switch {
	case errors.Is(err, post.ErrInvalid):
		return metrics.OutcomeInvalid
	case errors.Is(err, storage.ErrSlugTaken):
		return metrics.OutcomeConflict
	case err != nil:
		return metrics.OutcomeError
	case !found:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeOK
	}
}
