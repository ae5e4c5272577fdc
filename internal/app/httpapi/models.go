package httpapi

import "github.com/R3E-Network/blog_service/internal/app/domain/post"

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Body  string `json:"body"`
}

// UpdatePostRequest is the body of PUT /posts/{id}. The slug cannot change.
type UpdatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostResponse is the wire shape of a stored post.
type PostResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Body  string `json:"body"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func toResponse(p post.Post) PostResponse {
	return PostResponse{ID: p.ID, Title: p.Title, Slug: p.Slug, Body: p.Body}
}

func toResponses(list []post.Post) []PostResponse {
	out := make([]PostResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	return out
}
