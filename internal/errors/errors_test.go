package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")
	tests := []struct {
		name   string
		err    *ServiceError
		code   ErrorCode
		status int
	}{
		{"validation", Validation("title cannot be empty", nil), CodeValidation, http.StatusBadRequest},
		{"not found", NotFound("post", int64(3)), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("slug already exists", cause), CodeConflict, http.StatusConflict},
		{"internal", Internal("failed to create post", cause), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("database unreachable", cause), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limit", RateLimitExceeded(10, "1s"), CodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Fatalf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Fatalf("status = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
		})
	}
}

func TestNotFoundDetails(t *testing.T) {
	err := NotFound("post", int64(7))
	if err.Message != "post not found" {
		t.Fatalf("message = %q", err.Message)
	}
	if err.Details["id"] != int64(7) {
		t.Fatalf("details = %v", err.Details)
	}
}

func TestGetServiceError(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	wrapped := fmt.Errorf("handler: %w", Internal("failed to list posts", cause))

	svcErr := GetServiceError(wrapped)
	if svcErr == nil || svcErr.Code != CodeInternal {
		t.Fatalf("expected internal service error, got %v", svcErr)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if GetServiceError(cause) != nil {
		t.Fatalf("plain error must not convert")
	}
}
