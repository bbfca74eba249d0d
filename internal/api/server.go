// Package api serves the pool over a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/pfrederiksen/masters-pool/internal/metrics"
	"github.com/pfrederiksen/masters-pool/internal/pool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_pool.go github.com/pfrederiksen/masters-pool/internal/api Pool

// Pool is the subset of pool.Service the API needs
type Pool interface {
	Scoreboard(ctx context.Context) ([]competitor.ScoreboardEntry, error)
	FullField(ctx context.Context, refreshIfStale bool) ([]competitor.MasterScore, error)
	AvailablePlayers(ctx context.Context) ([]string, error)
	Refresh(ctx context.Context) (*pool.RefreshResult, error)
}

// Full field timestamps are shown at UTC+1 in this layout.
const (
	displayOffset = time.Hour
	displayLayout = "2006-01-02 15:04:05"
)

const shutdownTimeout = 5 * time.Second

// FullFieldEntry is one row of /api/full
type FullFieldEntry struct {
	Player       string `json:"golfer"`
	CurrentScore string `json:"current_score"`
	LastUpdated  string `json:"last_updated"`
}

// Server routes API requests to a Pool
type Server struct {
	pool    Pool
	metrics *metrics.Recorder
	origins []string
	router  chi.Router
}

// Option configures a Server
type Option func(*Server)

// WithMetrics counts requests and exposes /metrics
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// WithAllowedOrigins sets the CORS allow list; empty allows any origin
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a Server and builds its routes
func NewServer(p Pool, opts ...Option) *Server {
	s := &Server{pool: p}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.observe)

	r.Get("/healthz", s.Health)
	if reg := s.metrics.Registry(); reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/scoreboard", s.GetScoreboard)
		r.Get("/competition", s.GetScoreboard)
		r.Get("/full", s.GetFullField)
		r.Get("/players", s.GetPlayers)
		r.Post("/refresh", s.PostRefresh)
	})

	return r
}

// observe logs each request and counts it by route pattern
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.metrics.HTTPRequest(route, code)

		logger.Debug("HTTP request", logger.Fields{
			"method":      r.Method,
			"route":       route,
			"status":      code,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}

// Health reports liveness
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// GetScoreboard returns the ranked competitor scoreboard
func (s *Server) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.pool.Scoreboard(r.Context())
	if err != nil {
		failure(w, r, "Scoreboard failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, board)
}

// GetFullField returns every tracked player ranked by score, refreshing the
// ledger first when the cached leaderboard has expired.
func (s *Server) GetFullField(w http.ResponseWriter, r *http.Request) {
	records, err := s.pool.FullField(r.Context(), true)
	if err != nil {
		failure(w, r, "Full field failed", err)
		return
	}

	out := make([]FullFieldEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, FullFieldEntry{
			Player:       rec.Player,
			CurrentScore: rec.CurrentScore,
			LastUpdated:  FormatLastUpdated(rec.LastUpdated),
		})
	}
	jsonResponse(w, http.StatusOK, out)
}

// GetPlayers lists the players currently on the leaderboard
func (s *Server) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.pool.AvailablePlayers(r.Context())
	if err != nil {
		failure(w, r, "Listing players failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, players)
}

// PostRefresh forces a leaderboard fetch and records the results
func (s *Server) PostRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.pool.Refresh(r.Context())
	if err != nil {
		failure(w, r, "Refresh failed", err)
		return
	}
	if res.Changes == nil {
		res.Changes = []competitor.Change{}
	}
	jsonResponse(w, http.StatusOK, res)
}

// FormatLastUpdated renders a ledger timestamp at UTC+1
func FormatLastUpdated(t time.Time) string {
	return t.UTC().Add(displayOffset).Format(displayLayout)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", logger.Fields{"error": err.Error()})
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps an error to a status: timeouts are 504, everything else 500
func failure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	logger.Error(msg, logger.Fields{
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
	}, err)
	errorResponse(w, status, http.StatusText(status))
}
