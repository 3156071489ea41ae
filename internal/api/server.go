package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/metrics"
	"github.com/Swordfish189/github-events-tracker/internal/model"
)

// StatsProvider computes the aggregate interval map on demand.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]map[string]float64, error)
}

type Server struct {
	engine  StatsProvider
	stats   *metrics.Store
	repos   []string
	logger  *slog.Logger
	version string
	started time.Time
}

type statusResponse struct {
	Status       string                      `json:"status"`
	Time         string                      `json:"time"`
	Version      string                      `json:"version"`
	Uptime       string                      `json:"uptime"`
	Repositories []string                    `json:"repositories"`
	Cycles       int                         `json:"cycles"`
	LastCycle    string                      `json:"last_cycle,omitempty"`
	Fetch        map[string]model.FetchStats `json:"fetch"`
}

func Start(ctx context.Context, cfg config.APIConfig, engine StatsProvider, stats *metrics.Store, repos []string, logger *slog.Logger, version string) *http.Server {
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", cfg.Addr)
	}
	server := &Server{
		engine:  engine,
		stats:   stats,
		repos:   repos,
		logger:  logger,
		version: version,
		started: time.Now().UTC(),
	}
	httpServer := &http.Server{Addr: cfg.Addr, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	results, err := s.engine.Stats(r.Context())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("stats computation failed", "err", err)
		}
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp := statusResponse{
		Status:       "ok",
		Time:         time.Now().UTC().Format(time.RFC3339Nano),
		Version:      s.version,
		Uptime:       time.Since(s.started).Truncate(time.Second).String(),
		Repositories: s.repos,
	}
	if s.stats != nil {
		resp.Fetch = s.stats.GetAll()
		cycles, last := s.stats.Cycles()
		resp.Cycles = cycles
		if !last.IsZero() {
			resp.LastCycle = last.Format(time.RFC3339Nano)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
