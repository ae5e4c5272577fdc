// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"sync"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
	"github.com/R3E-Network/blog_service/internal/app/storage/memory"
)

// Operation names accepted by MockPostStore.FailOn and Calls.
const (
	OpList      = "ListPosts"
	OpGet       = "GetPost"
	OpGetBySlug = "GetPostBySlug"
	OpCreate    = "CreatePost"
	OpUpdate    = "UpdatePost"
	OpDelete    = "DeletePost"
)

var allOps = []string{OpList, OpGet, OpGetBySlug, OpCreate, OpUpdate, OpDelete}

// MockPostStore is a storage.PostStore for tests. It delegates to an
// in-memory store, counts calls per operation and fails operations on demand.
type MockPostStore struct {
	mu       sync.Mutex
	delegate storage.PostStore
	calls    map[string]int
	failures map[string]error
}

var _ storage.PostStore = (*MockPostStore)(nil)

// NewMockPostStore creates a mock backed by a fresh in-memory store.
func NewMockPostStore() *MockPostStore {
	return &MockPostStore{
		delegate: memory.New(),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// FailOn makes op return err until cleared with a nil err.
func (m *MockPostStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// FailAll makes every operation return err.
func (m *MockPostStore) FailAll(err error) {
	for _, op := range allOps {
		m.FailOn(op, err)
	}
}

// Calls returns how many times op was invoked.
func (m *MockPostStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of invocations across all operations.
func (m *MockPostStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Seed inserts posts directly into the backing store, bypassing failures
// and call counting.
func (m *MockPostStore) Seed(ctx context.Context, posts ...post.Post) ([]post.Post, error) {
	out := make([]post.Post, 0, len(posts))
	for _, p := range posts {
		created, err := m.delegate.CreatePost(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (m *MockPostStore) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	return m.failures[op]
}

func (m *MockPostStore) ListPosts(ctx context.Context) ([]post.Post, error) {
	if err := m.record(OpList); err != nil {
		return nil, err
	}
	return m.delegate.ListPosts(ctx)
}

func (m *MockPostStore) GetPost(ctx context.Context, id int64) (post.Post, bool, error) {
	if err := m.record(OpGet); err != nil {
		return post.Post{}, false, err
	}
	return m.delegate.GetPost(ctx, id)
}

func (m *MockPostStore) GetPostBySlug(ctx context.Context, slug string) (post.Post, bool, error) {
	if err := m.record(OpGetBySlug); err != nil {
		return post.Post{}, false, err
	}
	return m.delegate.GetPostBySlug(ctx, slug)
}

func (m *MockPostStore) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if err := m.record(OpCreate); err != nil {
		return post.Post{}, err
	}
	return m.delegate.CreatePost(ctx, p)
}

func (m *MockPostStore) UpdatePost(ctx context.Context, id int64, p post.Post) (post.Post, bool, error) {
	if err := m.record(OpUpdate); err != nil {
		return post.Post{}, false, err
	}
	return m.delegate.UpdatePost(ctx, id, p)
}

func (m *MockPostStore) DeletePost(ctx context.Context, id int64) (bool, error) {
	if err := m.record(OpDelete); err != nil {
		return false, err
	}
	return m.delegate.DeletePost(ctx, id)
}
