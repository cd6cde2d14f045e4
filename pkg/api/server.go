package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cuemby/opsboard/pkg/config"
	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
	"github.com/cuemby/opsboard/pkg/types"
)

// StatusPath is the snapshot endpoint
const StatusPath = "/api/status"

// noCacheHeaders forbid every caching layer from storing a snapshot
var noCacheHeaders = [][2]string{
	{"Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
	{"Surrogate-Control", "no-store"},
	{"CDN-Cache-Control", "no-store"},
	{"Cloudflare-CDN-Cache-Control", "no-store"},
	{"Vercel-CDN-Cache-Control", "no-store"},
}

// Snapshotter produces status snapshots
type Snapshotter interface {
	Snapshot(ctx context.Context) types.StatusSnapshot
}

// Server serves the status endpoint together with health, readiness and
// metrics endpoints
type Server struct {
	snapshots Snapshotter
	cfg       config.ServerConfig
	mux       *http.ServeMux
	server    *http.Server
}

// NewServer creates the HTTP server
func NewServer(cfg config.ServerConfig, snapshots Snapshotter) *Server {
	mux := http.NewServeMux()
	s := &Server{
		snapshots: snapshots,
		cfg:       cfg,
		mux:       mux,
		server: &http.Server{
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.Handle(StatusPath, Chain(http.HandlerFunc(s.statusHandler),
		Instrument(StatusPath),
		NoCache,
		ReadOnly,
		RateLimit(cfg.RatePerSecond, cfg.RateBurst),
	))
	mux.Handle("/health", Chain(metrics.HealthHandler(), Instrument("/health"), ReadOnly))
	mux.Handle("/ready", Chain(metrics.ReadyHandler(), Instrument("/ready"), ReadOnly))
	mux.Handle("/live", Chain(metrics.LivenessHandler(), Instrument("/live"), ReadOnly))
	mux.Handle("/metrics", metrics.Handler())

	return s
}

// Handler returns the HTTP handler for embedding in other servers
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve accepts connections on l until Shutdown is called
func (s *Server) Serve(l net.Listener) error {
	metrics.RegisterComponent(metrics.ComponentAPI, true, "serving on "+l.Addr().String())
	logger := log.WithComponent("api")
	logger.Info().Str("addr", l.Addr().String()).Msg("Status server listening")

	err := s.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on the configured address and serves
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	metrics.UpdateComponent(metrics.ComponentAPI, false, "shutting down")
	return s.server.Shutdown(ctx)
}

// statusHandler implements GET /api/status. Query parameters (such as a
// cache-busting token) are ignored.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshots.Snapshot(r.Context())

	body, err := json.Marshal(snapshot)
	if err != nil {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("Failed to encode snapshot")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}
