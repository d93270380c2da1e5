package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/leasemap/internal/lease"
	"github.com/KaramelBytes/leasemap/internal/observability"
	"github.com/KaramelBytes/leasemap/internal/render"
)

// Dataset is the immutable, already normalized data the explorer serves.
type Dataset struct {
	Records []lease.Record
	Bounds  lease.Bounds
}

// Options wires the explorer's collaborators. Nil fields get defaults.
type Options struct {
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	Clock    clockwork.Clock
}

// Server serves the explorer page plus health, metrics and GeoJSON routes.
type Server struct {
	httpServer *http.Server
	data       Dataset
	renderer   *render.Renderer
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

// New creates the explorer server listening on addr.
func New(addr string, data Dataset, renderer *render.Renderer, opt Options) *Server {
	if opt.Metrics == nil {
		opt.Metrics = observability.NewMetricsForTesting()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Clock == nil {
		opt.Clock = clockwork.NewRealClock()
	}
	metricsHandler := promhttp.Handler()
	if opt.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(opt.Gatherer, promhttp.HandlerOpts{})
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:     data,
		renderer: renderer,
		metrics:  opt.Metrics,
		logger:   opt.Logger,
		clock:    opt.Clock,
	}
	s.metrics.LeasesLoaded.Set(float64(len(data.Records)))

	mux.HandleFunc("GET /{$}", s.handleExplorer)
	mux.HandleFunc("GET /leases.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("explorer listening", "addr", s.httpServer.Addr, "leases", len(s.data.Records))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleExplorer(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()
	f := ParseFilter(r.URL.Query(), s.data.Bounds)
	shown := f.Apply(s.data.Records)

	var buf bytes.Buffer
	err := s.renderer.Explorer(&buf, render.ExplorerView{
		Records: shown,
		Total:   len(s.data.Records),
		Filter:  f,
		Bounds:  s.data.Bounds,
	})
	if err != nil {
		s.metrics.RenderErrors.Inc()
		s.logger.Error("render explorer", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	s.observe("explorer", len(shown), start)
	s.logger.Debug("explorer rendered", "shown", len(shown), "total", len(s.data.Records))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()
	f := ParseFilter(r.URL.Query(), s.data.Bounds)
	shown := f.Apply(s.data.Records)
	fc := render.LeaseFeatures(shown)
	if b, ok := render.Extent(fc); ok {
		fc.BBox = geojson.NewBBox(b)
	}
	body, err := json.Marshal(fc)
	if err != nil {
		s.metrics.RenderErrors.Inc()
		s.logger.Error("encode geojson", "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	s.observe("geojson", len(shown), start)

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client went away
}

func (s *Server) observe(page string, shown int, start time.Time) {
	s.metrics.PageRenders.WithLabelValues(page).Inc()
	s.metrics.LeasesShown.Observe(float64(shown))
	s.metrics.RenderDuration.WithLabelValues(page).Observe(s.clock.Since(start).Seconds())
}

// ParseFilter reads sf_low, sf_high, safety_low, safety_high, access_low and
// access_high. Missing or malformed values fall back to the bounds; the result
// is clamped to them.
func ParseFilter(q url.Values, b lease.Bounds) lease.Filter {
	f := b.Filter()
	f.SF.Low = floatParam(q, "sf_low", f.SF.Low)
	f.SF.High = floatParam(q, "sf_high", f.SF.High)
	f.Safety.Low = floatParam(q, "safety_low", f.Safety.Low)
	f.Safety.High = floatParam(q, "safety_high", f.Safety.High)
	f.Access.Low = floatParam(q, "access_low", f.Access.Low)
	f.Access.High = floatParam(q, "access_high", f.Access.High)
	return b.Clamp(f)
}

func floatParam(q url.Values, name string, def float64) float64 {
	raw := q.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
