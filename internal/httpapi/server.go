package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agrance/memorylane/internal/config"
	"github.com/agrance/memorylane/internal/journal"
	"github.com/agrance/memorylane/internal/observability"
)

type Server struct {
	cfg      config.Config
	store    journal.Store
	metrics  *observability.Metrics
	logger   *zap.Logger
	validate *validator.Validate
	limiter  *fixedWindowLimiter
}

func New(cfg config.Config, store journal.Store, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
		limiter:  newFixedWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.instrument)
	r.Use(cors.Handler(corsOptions(s.cfg)))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Get("/memories", s.handleListMemories)
		r.Post("/memories", s.handleCreateMemory)
		r.Get("/memories/{id}", s.handleGetMemory)
		r.Put("/memories/{id}", s.handleUpdateMemory)
		r.Delete("/memories/{id}", s.handleDeleteMemory)

		r.Get("/users/current", s.handleGetCurrentUser)
		r.Put("/users/current", s.handleUpdateUser)
	})

	return r
}

func corsOptions(cfg config.Config) cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if cfg.AllowAnyOrigin {
		opts.AllowedOrigins = []string{"*"}
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready means the store answers; a one-row count is the cheapest probe.
	if _, err := s.store.ListMemories(r.Context(), journal.ListParams{Page: 1, Limit: 1}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// instrument logs every request and records the Prometheus counters.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		s.metrics.RequestDuration.Observe(time.Since(start).Seconds())
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondStorageError maps a repository failure to 500 and counts it. The
// underlying message is surfaced verbatim; acceptable for a single-operator
// tool.
func (s *Server) respondStorageError(w http.ResponseWriter, op string, err error) {
	s.metrics.StorageErrors.WithLabelValues(op).Inc()
	s.logger.Error("storage error", zap.String("op", op), zap.Error(err))
	respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
}
