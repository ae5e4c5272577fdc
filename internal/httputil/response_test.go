package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"id": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"id":1}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWriteErrorResponseOmitsEmptyTrace(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/x", nil)
	WriteErrorResponse(rec, req, http.StatusBadRequest, "VALIDATION_ERROR", "invalid post id", nil)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid post id" || body["code"] != "VALIDATION_ERROR" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["trace_id"]; ok {
		t.Errorf("trace_id should be omitted, body = %v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"Hello"}`, false},
		{"empty", ``, true},
		{"malformed", `{"title":`, true},
		{"unknown field", `{"title":"a","author":"b"}`, true},
		{"trailing data", `{"title":"a"}{"title":"b"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadAllLimits(t *testing.T) {
	data, truncated, err := ReadAllWithLimit(strings.NewReader("abcdef"), 4)
	if err != nil || !truncated || string(data) != "abcd" {
		t.Errorf("ReadAllWithLimit() = %q, %v, %v", data, truncated, err)
	}

	if _, err := ReadAllStrict(strings.NewReader("abcdef"), 4); err == nil {
		t.Error("ReadAllStrict() should fail past the limit")
	}
	if data, err := ReadAllStrict(strings.NewReader("abc"), 4); err != nil || string(data) != "abc" {
		t.Errorf("ReadAllStrict() = %q, %v", data, err)
	}
}
