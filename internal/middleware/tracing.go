// Package middleware provides HTTP middleware for the blog API
package middleware

import (
	"net/http"

	"github.com/R3E-Network/blog_service/pkg/logger"
)

// TraceIDHeader is read from requests and echoed on responses.
const TraceIDHeader = "X-Trace-ID"

// Tracing assigns every request a trace ID, reusing the caller's X-Trace-ID
// when present. The ID is stored in the request context for logging and
// error bodies.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = logger.NewTraceID()
		}

		ctx := logger.WithTraceID(r.Context(), traceID)
		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
