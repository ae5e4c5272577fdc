// Package sqlstore implements storage.PostStore on a pooled SQL database.
//
// Every operation checks out exactly one connection, bounded by an
// acquisition timeout, and returns it before the call ends. Creation runs
// insert, key retrieval and read-back in one transaction on that connection,
// so a failed create never leaves a visible row.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
)

// DefaultAcquireTimeout bounds how long an operation waits for a pooled
// connection.
const DefaultAcquireTimeout = 5 * time.Second

// Store implements storage.PostStore backed by a SQL database.
type Store struct {
	db             *sqlx.DB
	dialect        Dialect
	acquireTimeout time.Duration
}

var _ storage.PostStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithAcquireTimeout overrides DefaultAcquireTimeout. Non-positive values are
// ignored.
func WithAcquireTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.acquireTimeout = d
		}
	}
}

// New creates a Store using the provided pool and dialect.
func New(db *sqlx.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, acquireTimeout: DefaultAcquireTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// postRow is the storage shape of a post.
type postRow struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Slug  string `db:"slug"`
	Body  string `db:"body"`
}

func (r postRow) toDomain() post.Post {
	return post.Post{ID: r.ID, Title: r.Title, Slug: r.Slug, Body: r.Body}
}

func fromDomain(p post.Post) postRow {
	return postRow{ID: p.ID, Title: p.Title, Slug: p.Slug, Body: p.Body}
}

const selectPostsSQL = `SELECT id, title, slug, body FROM posts`

func (s *Store) acquire(ctx context.Context, op string) (*sqlx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.db.Connx(acquireCtx)
	if err != nil {
		return nil, storage.ConnectionFailed(op, err)
	}
	return conn, nil
}

// classify tags unique-index violations so callers can match ErrSlugTaken
// without knowing the driver.
func (s *Store) classify(err error) error {
	if s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", storage.ErrSlugTaken, err)
	}
	return err
}

func (s *Store) ListPosts(ctx context.Context) ([]post.Post, error) {
	const op = "list posts"
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var rows []postRow
	if err := conn.SelectContext(ctx, &rows, conn.Rebind(selectPostsSQL+` ORDER BY id`)); err != nil {
		return nil, storage.QueryFailed(op, err)
	}

	result := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (post.Post, bool, error) {
	const op = "get post"
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return post.Post{}, false, err
	}
	defer conn.Close()

	return getPost(ctx, conn, op, `id`, id)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (post.Post, bool, error) {
	const op = "get post by slug"
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return post.Post{}, false, err
	}
	defer conn.Close()

	return getPost(ctx, conn, op, `slug`, slug)
}

func getPost(ctx context.Context, conn *sqlx.Conn, op, column string, value any) (post.Post, bool, error) {
	var row postRow
	err := conn.GetContext(ctx, &row, conn.Rebind(selectPostsSQL+` WHERE `+column+` = ?`), value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return post.Post{}, false, nil
	case err != nil:
		return post.Post{}, false, storage.QueryFailed(op, err)
	}
	return row.toDomain(), true, nil
}

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	const op = "create post"
	if p.Persisted() {
		return post.Post{}, post.AlreadyPersisted(p.ID)
	}
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return post.Post{}, err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return post.Post{}, storage.TransactionAborted(op, fmt.Errorf("begin: %w", err))
	}

	row, err := s.insertAndFetch(ctx, tx, fromDomain(p))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return post.Post{}, storage.TransactionAborted(op, s.classify(err))
	}
	if err := tx.Commit(); err != nil {
		return post.Post{}, storage.TransactionAborted(op, fmt.Errorf("commit: %w", s.classify(err)))
	}
	return row.toDomain(), nil
}

// insertAndFetch re-reads the inserted row so the caller sees what the store
// actually holds, including any column defaults.
func (s *Store) insertAndFetch(ctx context.Context, tx *sqlx.Tx, row postRow) (postRow, error) {
	id, err := s.dialect.InsertPost(ctx, tx, row.Title, row.Slug, row.Body)
	if err != nil {
		return postRow{}, fmt.Errorf("insert: %w", err)
	}

	var created postRow
	if err := tx.GetContext(ctx, &created, tx.Rebind(selectPostsSQL+` WHERE id = ?`), id); err != nil {
		return postRow{}, fmt.Errorf("fetch inserted row %d: %w", id, err)
	}
	return created, nil
}

// UpdatePost runs the update and the read-back as two statements on one
// connection. A row deleted in between is reported as absent.
func (s *Store) UpdatePost(ctx context.Context, id int64, p post.Post) (post.Post, bool, error) {
	const op = "update post"
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return post.Post{}, false, err
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE posts SET title = ?, body = ? WHERE id = ?`), p.Title, p.Body, id)
	if err != nil {
		return post.Post{}, false, storage.QueryFailed(op, s.classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return post.Post{}, false, storage.QueryFailed(op, fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return post.Post{}, false, nil
	}

	return getPost(ctx, conn, op, `id`, id)
}

func (s *Store) DeletePost(ctx context.Context, id int64) (bool, error) {
	const op = "delete post"
	conn, err := s.acquire(ctx, op)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx, conn.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return false, storage.QueryFailed(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, storage.QueryFailed(op, fmt.Errorf("rows affected: %w", err))
	}
	return affected > 0, nil
}
