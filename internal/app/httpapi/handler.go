package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/blog_service/internal/app"
	"github.com/R3E-Network/blog_service/internal/app/metrics"
	svcerrors "github.com/R3E-Network/blog_service/internal/errors"
	"github.com/R3E-Network/blog_service/internal/httputil"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "blog_service"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the post REST API, health and
// metrics endpoints. It applies no middleware; see Wrap.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)
	r.HandleFunc("/posts/slug/{slug}", h.getPostBySlug).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.getPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.updatePost).Methods(http.MethodPut)
	r.HandleFunc("/posts/{id}", h.deletePost).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorResponse(w, r, http.StatusNotFound, string(svcerrors.CodeNotFound), "route not found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorResponse(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello world!"))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Health(r.Context()); err != nil {
		respondError(w, r, h.log, svcerrors.Unavailable("service unhealthy", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Posts.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, classify(err, "list posts"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(list))
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.log, svcerrors.Validation(err.Error(), err))
		return
	}

	created, err := h.app.Posts.Create(r.Context(), req.Title, req.Slug, req.Body)
	if err != nil {
		respondError(w, r, h.log, classify(err, "create post"))
		return
	}
	w.Header().Set("Location", "/posts/"+strconv.FormatInt(created.ID, 10))
	httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, found, err := h.app.Posts.Get(r.Context(), id)
	switch {
	case err != nil:
		respondError(w, r, h.log, classify(err, "get post"))
	case !found:
		respondError(w, r, h.log, svcerrors.NotFound("Post", id))
	default:
		httputil.WriteJSON(w, http.StatusOK, toResponse(p))
	}
}

func (h *handler) getPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, found, err := h.app.Posts.GetBySlug(r.Context(), slug)
	switch {
	case err != nil:
		respondError(w, r, h.log, classify(err, "get post"))
	case !found:
		respondError(w, r, h.log, svcerrors.NotFound("Post", slug))
	default:
		httputil.WriteJSON(w, http.StatusOK, toResponse(p))
	}
}

func (h *handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.log, svcerrors.Validation(err.Error(), err))
		return
	}

	updated, found, err := h.app.Posts.Update(r.Context(), id, req.Title, req.Body)
	switch {
	case err != nil:
		respondError(w, r, h.log, classify(err, "update post"))
	case !found:
		respondError(w, r, h.log, svcerrors.NotFound("Post", id))
	default:
		httputil.WriteJSON(w, http.StatusOK, toResponse(updated))
	}
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	removed, err := h.app.Posts.Delete(r.Context(), id)
	switch {
	case err != nil:
		respondError(w, r, h.log, classify(err, "delete post"))
	case !removed:
		respondError(w, r, h.log, svcerrors.NotFound("Post", id))
	default:
		httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
	}
}

// pathID parses the {id} segment. Range checks are left to the service.
func (h *handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, r, h.log, svcerrors.Validation("invalid post id "+strconv.Quote(raw), err).WithDetails("field", "id"))
		return 0, false
	}
	return id, true
}
