package post

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every validation failure raised for a post or its
// identifier.
var ErrInvalid = errors.New("invalid post")

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets callers match any validation error with errors.Is(err, ErrInvalid).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Post is a blog entry. A zero ID means the post has never been stored; once
// the store assigns an ID it never changes.
type Post struct {
	ID    int64
	Title string
	Slug  string
	Body  string
}

// New builds an unsaved post.
func New(title, slug, body string) Post {
	return Post{Title: title, Slug: slug, Body: body}
}

// Persisted reports whether the store has assigned an identifier.
func (p Post) Persisted() bool {
	return p.ID > 0
}

// Validate checks that title, slug and body carry non-blank content.
func (p Post) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	case strings.TrimSpace(p.Slug) == "":
		return &ValidationError{Field: "slug", Message: "slug cannot be empty"}
	case strings.TrimSpace(p.Body) == "":
		return &ValidationError{Field: "body", Message: "body cannot be empty"}
	}
	return nil
}

// Update replaces the editable fields. ID and slug are fixed after creation.
func (p *Post) Update(title, body string) {
	p.Title = title
	p.Body = body
}

// InvalidID is the validation error returned for non-positive identifiers.
func InvalidID(id int64) error {
	return &ValidationError{Field: "id", Message: fmt.Sprintf("invalid post id %d: must be a positive integer", id)}
}

// AlreadyPersisted is the validation error for creating a post that already
// carries a store-assigned id.
func AlreadyPersisted(id int64) error {
	return &ValidationError{Field: "id", Message: fmt.Sprintf("post %d is already persisted", id)}
}
