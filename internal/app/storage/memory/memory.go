package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
)

// Store is an in-memory implementation of storage.PostStore. It is safe for
// concurrent use and is primarily intended for tests and local development.
// IDs are assigned from a monotonically increasing counter and never reused,
// mirroring an AUTOINCREMENT column.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	posts  map[int64]post.Post
	slugs  map[string]int64
}

var _ storage.PostStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID: 1,
		posts:  make(map[int64]post.Post),
		slugs:  make(map[string]int64),
	}
}

func (s *Store) ListPosts(_ context.Context) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) GetPost(_ context.Context, id int64) (post.Post, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	return p, ok, nil
}

func (s *Store) GetPostBySlug(_ context.Context, slug string) (post.Post, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slug]
	if !ok {
		return post.Post{}, false, nil
	}
	return s.posts[id], true, nil
}

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	if p.Persisted() {
		return post.Post{}, post.AlreadyPersisted(p.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.slugs[p.Slug]; exists {
		return post.Post{}, storage.TransactionAborted("create post", fmt.Errorf("%w: %q", storage.ErrSlugTaken, p.Slug))
	}

	p.ID = s.nextID
	s.nextID++
	s.posts[p.ID] = p
	s.slugs[p.Slug] = p.ID
	return p, nil
}

func (s *Store) UpdatePost(_ context.Context, id int64, p post.Post) (post.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[id]
	if !ok {
		return post.Post{}, false, nil
	}
	existing.Title = p.Title
	existing.Body = p.Body
	s.posts[id] = existing
	return existing, true, nil
}

func (s *Store) DeletePost(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[id]
	if !ok {
		return false, nil
	}
	delete(s.posts, id)
	delete(s.slugs, existing.Slug)
	return true, nil
}
