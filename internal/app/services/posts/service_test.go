package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
	"github.com/R3E-Network/blog_service/internal/app/storage/memory"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// spyStore counts calls and returns canned results.
type spyStore struct {
	calls int
	err   error
	found bool
	post  post.Post
}

func (s *spyStore) ListPosts(context.Context) ([]post.Post, error) {
	s.calls++
	return nil, s.err
}

func (s *spyStore) GetPost(context.Context, int64) (post.Post, bool, error) {
	s.calls++
	return s.post, s.found, s.err
}

func (s *spyStore) GetPostBySlug(context.Context, string) (post.Post, bool, error) {
	s.calls++
	return s.post, s.found, s.err
}

func (s *spyStore) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.calls++
	p.ID = 1
	return p, s.err
}

func (s *spyStore) UpdatePost(_ context.Context, _ int64, p post.Post) (post.Post, bool, error) {
	s.calls++
	return p, s.found, s.err
}

func (s *spyStore) DeletePost(context.Context, int64) (bool, error) {
	s.calls++
	return s.found, s.err
}

func newService(store storage.PostStore) *Service {
	return New(store, logger.NewNop())
}

func TestNonPositiveIDsNeverReachStore(t *testing.T) {
	ctx := context.Background()
	for _, id := range []int64{0, -1, -42} {
		spy := &spyStore{}
		svc := newService(spy)

		if _, _, err := svc.Get(ctx, id); !errors.Is(err, post.ErrInvalid) {
			t.Fatalf("get(%d): expected validation error, got %v", id, err)
		}
		if _, _, err := svc.Update(ctx, id, "t", "b"); !errors.Is(err, post.ErrInvalid) {
			t.Fatalf("update(%d): expected validation error, got %v", id, err)
		}
		if _, err := svc.Delete(ctx, id); !errors.Is(err, post.ErrInvalid) {
			t.Fatalf("delete(%d): expected validation error, got %v", id, err)
		}
		if spy.calls != 0 {
			t.Fatalf("id %d reached the store %d times", id, spy.calls)
		}
	}
}

func TestCreateValidatesBeforeStore(t *testing.T) {
	spy := &spyStore{}
	svc := newService(spy)

	_, err := svc.Create(context.Background(), "Hello", "   ", "World")
	var vErr *post.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "slug" {
		t.Fatalf("expected slug validation error, got %v", err)
	}
	if spy.calls != 0 {
		t.Fatalf("invalid post reached the store")
	}
}

func TestGetBySlugRejectsBlank(t *testing.T) {
	spy := &spyStore{}
	svc := newService(spy)

	if _, _, err := svc.GetBySlug(context.Background(), " "); !errors.Is(err, post.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if spy.calls != 0 {
		t.Fatalf("blank slug reached the store")
	}
}

func TestUpdateValidatesMergedPost(t *testing.T) {
	spy := &spyStore{found: true, post: post.Post{ID: 3, Title: "a", Slug: "a", Body: "b"}}
	svc := newService(spy)

	_, _, err := svc.Update(context.Background(), 3, "", "body")
	if !errors.Is(err, post.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if spy.calls != 1 {
		t.Fatalf("expected only the fetch to run, got %d calls", spy.calls)
	}
}

func TestUpdateMissingSkipsWrite(t *testing.T) {
	spy := &spyStore{}
	svc := newService(spy)

	_, found, err := svc.Update(context.Background(), 9, "t", "b")
	if err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}
	if spy.calls != 1 {
		t.Fatalf("expected a single lookup, got %d calls", spy.calls)
	}
}

func TestStorageErrorsKeepKind(t *testing.T) {
	cause := errors.New("database is locked")
	spy := &spyStore{err: storage.TransactionAborted("create post", cause)}
	svc := newService(spy)

	_, err := svc.Create(context.Background(), "Hello", "hello", "World")
	if !errors.Is(err, storage.ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if kind, ok := storage.KindOf(err); !ok || kind != storage.KindTransaction {
		t.Fatalf("kind = %v, %v", kind, ok)
	}

	spy.err = storage.QueryFailed("delete post", cause)
	if _, err := svc.Delete(context.Background(), 1); !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("expected storage error from delete, got %v", err)
	}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())

	created, err := svc.Create(ctx, "Hello", "hello", "World")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	all, err := svc.List(ctx)
	if err != nil || len(all) != 1 || all[0] != created {
		t.Fatalf("list: %+v err=%v", all, err)
	}

	updated, found, err := svc.Update(ctx, created.ID, "Hello2", "World2")
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}
	want := post.Post{ID: created.ID, Title: "Hello2", Slug: "hello", Body: "World2"}
	if updated != want {
		t.Fatalf("updated = %+v, want %+v", updated, want)
	}

	bySlug, found, err := svc.GetBySlug(ctx, "hello")
	if err != nil || !found || bySlug != want {
		t.Fatalf("get by slug: %+v found=%v err=%v", bySlug, found, err)
	}

	removed, err := svc.Delete(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	removed, err = svc.Delete(ctx, created.ID)
	if err != nil || removed {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}

	if _, found, err := svc.Get(ctx, created.ID); err != nil || found {
		t.Fatalf("get after delete: found=%v err=%v", found, err)
	}
}

func TestDuplicateSlugIsConflict(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())

	if _, err := svc.Create(ctx, "First", "same", "one"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, "Second", "same", "two")
	if !errors.Is(err, storage.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if outcomeOf(true, err) != "conflict" {
		t.Fatalf("duplicate slug should be recorded as a conflict")
	}
}
