package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/VanessaDre/masterblog-api/config"
	"github.com/VanessaDre/masterblog-api/domain/post"
	"github.com/VanessaDre/masterblog-api/logging"
	"github.com/VanessaDre/masterblog-api/storage"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

func MakeServer(cfg *config.Config, handler *HTTPHandler) *http.Server {
	return &http.Server{
		Handler:      handler.Routes(),
		Addr:         cfg.Addr(),
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		ErrorLog:     logging.NewLogLogger(handler.logger, slog.LevelWarn),
	}
}

type HTTPHandler struct {
	storage  storage.Storage
	contract *openapi3.T
	limiter  *rate.Limiter
	logger   *slog.Logger
	ready    atomic.Bool
}

func NewHTTPHandler(s storage.Storage, contract *openapi3.T, limiter *rate.Limiter, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &HTTPHandler{
		storage:  s,
		contract: contract,
		limiter:  limiter,
		logger:   logger,
	}
}

func (h *HTTPHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Routes builds the router. System endpoints bypass the middleware chain;
// everything under /api is rate limited, logged and measured. CORS is open to
// any origin.
func (h *HTTPHandler) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.NotFoundHandler = r.NotFoundHandler
	a.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	a.Use(h.metricsMiddleware, h.requestIDMiddleware, h.panicRecoveryMiddleware, h.rateLimitMiddleware, h.loggingMiddleware)

	a.HandleFunc("/openapi.json", h.GetContract).Methods(http.MethodGet)
	a.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	a.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	a.HandleFunc("/posts/search", h.SearchPosts).Methods(http.MethodGet)
	a.HandleFunc("/posts/{postId:[0-9]+}", h.GetPostById).Methods(http.MethodGet)
	a.HandleFunc("/posts/{postId:[0-9]+}", h.ModifyPost).Methods(http.MethodPut)
	a.HandleFunc("/posts/{postId:[0-9]+}", h.DeletePost).Methods(http.MethodDelete)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id"},
	}).Handler(r)
}

func (h *HTTPHandler) GetPosts(rw http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts, err := post.ParseListOptions(query.Get("sort"), query.Has("sort"), query.Get("direction"))
	if err != nil {
		h.respondStorageError(rw, r, err, "")
		return
	}
	posts, err := h.storage.GetPosts(r.Context(), opts)
	if err != nil {
		h.respondStorageError(rw, r, err, "")
		return
	}
	respondJSON(rw, http.StatusOK, posts)
}

func (h *HTTPHandler) CreatePost(rw http.ResponseWriter, r *http.Request) {
	draft := readFields(h.logger, r).Draft()
	p, err := h.storage.AddPost(r.Context(), draft)
	if err != nil {
		h.respondStorageError(rw, r, err, "")
		return
	}
	respondJSON(rw, http.StatusCreated, p)
}

func (h *HTTPHandler) GetPostById(rw http.ResponseWriter, r *http.Request) {
	postId, raw, ok := pathPostId(r)
	if !ok {
		respondError(rw, http.StatusNotFound, notFoundMessage(raw))
		return
	}
	p, err := h.storage.GetPostById(r.Context(), postId)
	if err != nil {
		h.respondStorageError(rw, r, err, strconv.Itoa(postId))
		return
	}
	respondJSON(rw, http.StatusOK, p)
}

func (h *HTTPHandler) ModifyPost(rw http.ResponseWriter, r *http.Request) {
	postId, raw, ok := pathPostId(r)
	if !ok {
		respondError(rw, http.StatusNotFound, notFoundMessage(raw))
		return
	}
	patch := readFields(h.logger, r).Patch()
	p, err := h.storage.ModifyPost(r.Context(), postId, patch)
	if err != nil {
		h.respondStorageError(rw, r, err, strconv.Itoa(postId))
		return
	}
	respondJSON(rw, http.StatusOK, p)
}

func (h *HTTPHandler) DeletePost(rw http.ResponseWriter, r *http.Request) {
	postId, raw, ok := pathPostId(r)
	if !ok {
		respondError(rw, http.StatusNotFound, notFoundMessage(raw))
		return
	}
	if err := h.storage.DeletePost(r.Context(), postId); err != nil {
		h.respondStorageError(rw, r, err, strconv.Itoa(postId))
		return
	}
	respondJSON(rw, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Post with id %d has been deleted successfully.", postId),
	})
}

func (h *HTTPHandler) SearchPosts(rw http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := post.NewSearchQuery(query.Get("title"), query.Get("content"))
	posts, err := h.storage.SearchPosts(r.Context(), q)
	if err != nil {
		h.respondStorageError(rw, r, err, "")
		return
	}
	respondJSON(rw, http.StatusOK, posts)
}

func (h *HTTPHandler) GetContract(rw http.ResponseWriter, _ *http.Request) {
	if h.contract == nil {
		respondError(rw, http.StatusNotFound, "API contract not loaded")
		return
	}
	respondJSON(rw, http.StatusOK, h.contract)
}

func (h *HTTPHandler) NotFound(rw http.ResponseWriter, _ *http.Request) {
	respondError(rw, http.StatusNotFound, "Not found")
}

func (h *HTTPHandler) MethodNotAllowed(rw http.ResponseWriter, _ *http.Request) {
	respondError(rw, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *HTTPHandler) respondStorageError(rw http.ResponseWriter, r *http.Request, err error, postId string) {
	var verr *post.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(rw, http.StatusBadRequest, ErrorResponse{Error: verr.Message, MissingFields: verr.MissingFields})
	case errors.Is(err, storage.ErrPostNotFound):
		respondError(rw, http.StatusNotFound, notFoundMessage(postId))
	default:
		h.logger.Error("request failed",
			"requestId", requestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(rw, http.StatusInternalServerError, "Internal server error")
	}
}

func notFoundMessage(postId string) string {
	return fmt.Sprintf("Post with id %s not found.", postId)
}

// pathPostId reads the id route variable. The route only admits digits, so
// the conversion fails only on overflow; such an id cannot exist.
func pathPostId(r *http.Request) (int, string, bool) {
	raw := mux.Vars(r)["postId"]
	postId, err := strconv.Atoi(raw)
	return postId, raw, err == nil
}

// readFields never fails: an absent, malformed or oversized body has no
// fields and validation decides what to reject.
func readFields(logger *slog.Logger, r *http.Request) post.Fields {
	if r.Body == nil {
		return post.Fields{}
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		logger.Debug("request body ignored", "requestId", requestID(r), "error", err)
		return post.Fields{}
	}
	return post.ParseFields(body)
}
