package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// Server exposes the query surface over HTTP: today's arrivals, health, and
// Prometheus metrics.
type Server struct {
	queries *service.QueryService
	pinger  storage.Pinger
	logger  zerolog.Logger
	router  chi.Router
}

// NewServer wires handlers onto a chi router.
func NewServer(queries *service.QueryService, pinger storage.Pinger, logger zerolog.Logger) *Server {
	s := &Server{
		queries: queries,
		pinger:  pinger,
		logger:  logger.With().Str("component", "api").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/arrivals/today", s.handleTodaysArrivals)
		r.Get("/arrivals/{date}", s.handleArrivalsByDate)
	})
	s.router = r

	return s
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", addr).Msg("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	services := map[string]string{}

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			status = "down"
			services["postgres"] = err.Error()
		} else {
			services["postgres"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":   status,
		"services": services,
	})
}

func (s *Server) handleTodaysArrivals(w http.ResponseWriter, r *http.Request) {
	report, err := s.queries.TodaysArrivals(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("todays arrivals query failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": "arrival ledger unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleArrivalsByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "date must be YYYY-MM-DD",
		})
		return
	}

	report, err := s.queries.ArrivalsForDate(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("arrivals query failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": "arrival ledger unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
