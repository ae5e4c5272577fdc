// Package storagetest holds the behavioural contract every storage.PostStore
// implementation must satisfy. Adapter packages run it from their own tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
)

// Factory returns a fresh, empty store for a single subtest.
type Factory func(t *testing.T) storage.PostStore

// Run executes the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("ListOrderedByID", func(t *testing.T) { testListOrdered(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("UpdateKeepsIDAndSlug", func(t *testing.T) { testUpdateKeepsIdentity(t, newStore(t)) })
	t.Run("DeleteTwice", func(t *testing.T) { testDeleteTwice(t, newStore(t)) })
	t.Run("GetBySlug", func(t *testing.T) { testGetBySlug(t, newStore(t)) })
	t.Run("DuplicateSlug", func(t *testing.T) { testDuplicateSlug(t, newStore(t)) })
	t.Run("IDsNotReused", func(t *testing.T) { testIDsNotReused(t, newStore(t)) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, newStore(t)) })
	t.Run("CreateRejectsPersisted", func(t *testing.T) { testCreateRejectsPersisted(t, newStore(t)) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, newStore(t)) })
}

func testCreateThenGet(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	inputs := []post.Post{
		post.New("Hello", "hello", "World"),
		post.New("  padded  ", "padded-slug", "body with\nnewlines"),
		post.New("Ünïcødé", "unicode", "日本語の本文"),
	}
	for _, in := range inputs {
		created, err := store.CreatePost(ctx, in)
		require.NoError(t, err)
		require.Greater(t, created.ID, int64(0))

		got, found, err := store.GetPost(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		if diff := cmp.Diff(created, got); diff != "" {
			t.Fatalf("stored post differs (-created +got):\n%s", diff)
		}

		want := in
		want.ID = created.ID
		if diff := cmp.Diff(want, created); diff != "" {
			t.Fatalf("created post differs from input (-want +got):\n%s", diff)
		}
	}
}

func testCreateRejectsPersisted(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	in := post.Post{ID: 7, Title: "Hello", Slug: "hello", Body: "World"}

	_, err := store.CreatePost(ctx, in)
	require.ErrorIs(t, err, post.ErrInvalid)
	assert.False(t, errors.Is(err, storage.ErrStorage), "rejected before reaching storage")

	all, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testGetMissing(t *testing.T, store storage.PostStore) {
	got, found, err := store.GetPost(context.Background(), 424242)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, post.Post{}, got)
}

func testListOrdered(t *testing.T, store storage.PostStore) {
	ctx := context.Background()

	empty, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	var ids []int64
	for i := 0; i < 3; i++ {
		p, err := store.CreatePost(ctx, post.New(fmt.Sprintf("t%d", i), fmt.Sprintf("s%d", i), "b"))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	list, err := store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, ids[i], p.ID)
	}
}

func testUpdateMissing(t *testing.T, store storage.PostStore) {
	_, found, err := store.UpdatePost(context.Background(), 99, post.New("x", "y", "z"))
	require.NoError(t, err)
	assert.False(t, found)
}

func testUpdateKeepsIdentity(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	created, err := store.CreatePost(ctx, post.New("Hello", "hello", "World"))
	require.NoError(t, err)

	edited := created
	edited.Update("Hello2", "World2")
	edited.Slug = "ignored-slug"

	updated, found, err := store.UpdatePost(ctx, created.ID, edited)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, post.Post{ID: created.ID, Title: "Hello2", Slug: "hello", Body: "World2"}, updated)

	got, found, err := store.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, updated, got)
}

func testDeleteTwice(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	created, err := store.CreatePost(ctx, post.New("Hello", "hello", "World"))
	require.NoError(t, err)

	removed, err := store.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, found, err := store.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func testGetBySlug(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	created, err := store.CreatePost(ctx, post.New("Hello", "hello", "World"))
	require.NoError(t, err)

	got, found, err := store.GetPostBySlug(ctx, "hello")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, got)

	_, found, err = store.GetPostBySlug(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func testDuplicateSlug(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	_, err := store.CreatePost(ctx, post.New("First", "same", "one"))
	require.NoError(t, err)

	_, err = store.CreatePost(ctx, post.New("Second", "same", "two"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrSlugTaken), "expected ErrSlugTaken, got %v", err)
	assert.True(t, errors.Is(err, storage.ErrStorage), "expected ErrStorage, got %v", err)

	list, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "failed create must not leave a row behind")
}

func testIDsNotReused(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	first, err := store.CreatePost(ctx, post.New("a", "a", "a"))
	require.NoError(t, err)
	_, err = store.DeletePost(ctx, first.ID)
	require.NoError(t, err)

	second, err := store.CreatePost(ctx, post.New("b", "b", "b"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func testConcurrentCreates(t *testing.T, store storage.PostStore) {
	ctx := context.Background()
	const n = 8

	var wg sync.WaitGroup
	results := make([]post.Post, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.CreatePost(ctx, post.New(fmt.Sprintf("title-%d", i), fmt.Sprintf("slug-%d", i), "body"))
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("slug-%d", i), results[i].Slug, "create returned another writer's row")
		assert.False(t, seen[results[i].ID], "duplicate id %d", results[i].ID)
		seen[results[i].ID] = true
	}
}

func testScenario(t *testing.T, store storage.PostStore) {
	ctx := context.Background()

	created, err := store.CreatePost(ctx, post.New("Hello", "hello", "World"))
	require.NoError(t, err)
	require.Greater(t, created.ID, int64(0))
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, "hello", created.Slug)
	assert.Equal(t, "World", created.Body)

	all, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []post.Post{created}, all)

	updated, found, err := store.UpdatePost(ctx, created.ID, post.Post{Title: "Hello2", Body: "World2"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, post.Post{ID: created.ID, Title: "Hello2", Slug: "hello", Body: "World2"}, updated)

	removed, err := store.DeletePost(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, found, err = store.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)
}
