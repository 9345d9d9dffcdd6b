package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/version"
)

// Options tune the HTTP server. Zero values fall back to defaults.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the main Sentinel server.
type Server struct {
	httpServer *http.Server
	registry   *plugin.Registry
	metrics    *prometheus.Registry
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance. metrics may be nil, in which case
// /metrics is not mounted.
func New(addr string, reg *plugin.Registry, metrics *prometheus.Registry, logger *zap.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  orDefault(opts.ReadTimeout, 15*time.Second),
			WriteTimeout: orDefault(opts.WriteTimeout, 15*time.Second),
			IdleTimeout:  orDefault(opts.IdleTimeout, 60*time.Second),
		},
		registry: reg,
		metrics:  metrics,
		logger:   logger,
		mux:      mux,
	}
	s.httpServer.Handler = s.logRequests(mux)

	s.registerCoreRoutes()
	s.mountPluginRoutes()

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/plugins", s.handlePlugins)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
}

// mountPluginRoutes registers all plugin routes under /api/v1/{plugin}/.
func (s *Server) mountPluginRoutes() {
	allRoutes := s.registry.AllRoutes()
	for pluginName, routes := range allRoutes {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, pluginName, route.Path)
			s.mux.HandleFunc(pattern, route.Handler)
			s.logger.Debug("mounted route",
				zap.String("plugin", pluginName),
				zap.String("pattern", pattern),
			)
		}
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

type healthResponse struct {
	Status  string                         `json:"status"`
	Service string                         `json:"service"`
	Version map[string]string              `json:"version"`
	Plugins map[string]plugin.HealthStatus `json:"plugins,omitempty"`
}

// handleHealth returns the server health status. The overall status is the
// worst status reported by any plugin.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Service: "sentinel",
		Version: version.Map(),
		Plugins: make(map[string]plugin.HealthStatus),
	}
	for name, hc := range s.registry.HealthCheckers() {
		hs := hc.Health(r.Context())
		resp.Plugins[name] = hs
		switch hs.Status {
		case "unhealthy":
			resp.Status = "unhealthy"
		case "degraded":
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}
	w.Header().Set("X-Sentinel-Version", version.Short())
	WriteJSON(w, http.StatusOK, resp)
}

// handlePlugins returns the list of registered plugins.
func (s *Server) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	type pluginResponse struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Enabled bool   `json:"enabled"`
	}
	plugins := s.registry.All()
	info := make([]pluginResponse, 0, len(plugins))
	for _, p := range plugins {
		info = append(info, pluginResponse{
			Name:    p.Name(),
			Version: p.Version(),
			Enabled: s.registry.Enabled(p.Name()),
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].Name < info[j].Name })
	w.Header().Set("X-Sentinel-Version", version.Short())
	WriteJSON(w, http.StatusOK, info)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// statusRecorder captures the response status. It forwards Hijack and
// Flush so that WebSocket upgrades keep working behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
