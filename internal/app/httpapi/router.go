package httpapi

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/R3E-Network/blog_service/internal/app/metrics"
	"github.com/R3E-Network/blog_service/internal/middleware"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// Options selects the optional middleware applied by Wrap.
type Options struct {
	CORSOrigins []string
	// RateLimiter is applied when non-nil.
	RateLimiter *middleware.RateLimiter
}

// Wrap applies the standard middleware stack to h. From the outside in:
// request id, real client IP, trace id, request logging, panic recovery,
// CORS, rate limiting and HTTP metrics.
func Wrap(h http.Handler, log *logger.Logger, opts Options) http.Handler {
	if log == nil {
		log = logger.NewDefault("http")
	}

	h = metrics.InstrumentHandler(h)
	if opts.RateLimiter != nil {
		h = opts.RateLimiter.Handler(h)
	}
	if len(opts.CORSOrigins) > 0 {
		h = middleware.NewCORSMiddleware(opts.CORSOrigins).Handler(h)
	}
	h = chimw.Recoverer(h)
	h = middleware.Logging(log)(h)
	h = middleware.Tracing(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}
