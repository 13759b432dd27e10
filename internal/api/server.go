// Package api exposes the read-only HTTP interface over the ingested
// catalog.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tfgs-backend/internal/metrics"
	"tfgs-backend/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	recentCount     = 10
)

// Catalog is the slice of the store the server reads from.
type Catalog interface {
	ListGames(ctx context.Context, filter store.ListFilter) ([]store.GameSummary, int, error)
	GetGame(ctx context.Context, id int) (*store.GameDetail, error)
	ListReviews(ctx context.Context, gameID, limit, offset int) ([]store.ReviewRow, error)
	RecentlyReleased(ctx context.Context, limit int) ([]store.GameSummary, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]store.GameSummary, error)
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the catalog store.
type Server struct {
	router  chi.Router
	catalog Catalog
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(cat Catalog, logger *zap.Logger) *Server {
	s := &Server{catalog: cat, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.listGames)
			r.Get("/new", s.recentlyReleased)
			r.Get("/updated", s.recentlyUpdated)
			r.Route("/{game_id}", func(r chi.Router) {
				r.Get("/", s.getGame)
				r.Get("/reviews", s.listReviews)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		writeError(s.logger, w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

type gameListResponse struct {
	Games  []store.GameSummary `json:"games"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	filter := store.ListFilter{
		Engine: r.URL.Query().Get("engine"),
		Rating: r.URL.Query().Get("rating"),
		Limit:  limit,
		Offset: offset,
	}
	games, total, err := s.catalog.ListGames(r.Context(), filter)
	if err != nil {
		s.logger.Error("list games failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list games")
		return
	}
	if games == nil {
		games = []store.GameSummary{}
	}
	writeJSON(s.logger, w, http.StatusOK, gameListResponse{
		Games:  games,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "game_id"))
	if err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid game id")
		return
	}
	game, err := s.catalog.GetGame(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(s.logger, w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		s.logger.Error("get game failed", zap.Int("game_id", id), zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to load game")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, game)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "game_id"))
	if err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid game id")
		return
	}
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.catalog.ListReviews(r.Context(), id, limit, offset)
	if err != nil {
		s.logger.Error("list reviews failed", zap.Int("game_id", id), zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []store.ReviewRow{}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) recentlyReleased(w http.ResponseWriter, r *http.Request) {
	s.recentGames(w, r, s.catalog.RecentlyReleased)
}

func (s *Server) recentlyUpdated(w http.ResponseWriter, r *http.Request) {
	s.recentGames(w, r, s.catalog.RecentlyUpdated)
}

func (s *Server) recentGames(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, int) ([]store.GameSummary, error),
) {
	games, err := fetch(r.Context(), recentCount)
	if err != nil {
		s.logger.Error("recent games failed", zap.Error(err))
		writeError(s.logger, w, http.StatusInternalServerError, "failed to list games")
		return
	}
	if games == nil {
		games = []store.GameSummary{}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"games": games})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(s.logger, w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
