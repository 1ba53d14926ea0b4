// Package http serves the mapfin REST proxy: row level CRUD over whichever
// backend the process was configured with.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mapfin/internal/log"
	"mapfin/internal/sheets"
)

// Options tunes a Server. The zero value is usable.
type Options struct {
	// RateLimit is the number of mutations one client may make per
	// RateWindow. Defaults to 60 per minute.
	RateLimit  int
	RateWindow time.Duration
	// AllowedOrigin is echoed in Access-Control-Allow-Origin; "" means "*".
	AllowedOrigin string
	Logger        *log.Logger
	// Ready overrides the readiness probe. By default the store is pinged
	// when it supports it, otherwise People is fetched.
	Ready func(ctx context.Context) error
	// OnShutdown hooks run once, before the listener is closed.
	OnShutdown []func()
}

type Server struct {
	http.Server
	store       sheets.RowStore
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     securityMetrics
	origin      string
	ready       func(ctx context.Context) error
	onShutdown  []func()
	started     time.Time

	shutdownOnce sync.Once
}

type pinger interface {
	Ping(ctx context.Context) error
}

// NewServer configures routes over store, returning a ready-to-run http.Server.
func NewServer(addr string, store sheets.RowStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithComponent(log.ComponentHTTP)
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:       store,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.RateLimit, opts.RateWindow),
		origin:      opts.AllowedOrigin,
		ready:       opts.Ready,
		onShutdown:  opts.OnShutdown,
		started:     time.Now(),
	}
	if s.ready == nil {
		s.ready = s.defaultReady
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/health", s.handleAPIHealth)
	mux.HandleFunc("GET /api/{collection}", s.handleList)
	mux.HandleFunc("POST /api/{collection}", s.handleCreate)
	mux.HandleFunc("PUT /api/{collection}/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/{collection}/{id}", s.handleDelete)
	mux.HandleFunc("OPTIONS /api/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/api/", s.handleUnmatchedAPI)

	s.Handler = s.withMiddleware(mux)
	return s
}

// withMiddleware adds request ids, security and CORS headers, rate limiting
// on mutations, and request logging.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	logged := log.Middleware(s.logger, func(r *http.Request) string { return r.Header.Get("X-Request-ID") })

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)
		atomic.AddInt64(&s.metrics.requestsTotal, 1)

		log.LogHTTPStart(ctx, r, clientIP)
		if detectSuspiciousRequest(r, &s.metrics) {
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
		}

		setSecurityHeaders(w.Header())
		setCORSHeaders(w.Header(), s.origin)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, &s.metrics) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method)
			rw.Header().Set("Retry-After", fmt.Sprintf("%d", int(s.rateLimiter.window.Seconds())))
			writeError(rw, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		} else {
			next.ServeHTTP(rw, r)
		}

		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})

	handler := logged(inner)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		r.Header.Set("X-Request-ID", id)
		w.Header().Set("X-Request-ID", id)
		handler.ServeHTTP(w, r)
	})
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops background work and gracefully shuts the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		for _, fn := range s.onShutdown {
			fn()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) defaultReady(ctx context.Context) error {
	if p, ok := s.store.(pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.store.FetchAll(ctx, sheets.People)
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleAPIHealth answers the proxy's own health route.
func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.activeClients(), "status": "ok"},
	}
	status, code := "ready", http.StatusOK
	if err := s.ready(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	counters := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", atomic.LoadInt64(&s.metrics.requestsTotal)},
		{"record_changes_total", "Total number of successful writes", "counter", atomic.LoadInt64(&s.metrics.recordChanges)},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", atomic.LoadInt64(&s.metrics.rateLimitHits)},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", atomic.LoadInt64(&s.metrics.suspiciousRequests)},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", int64(s.rateLimiter.activeClients())},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.started).Seconds())},
	}
	var b strings.Builder
	for _, c := range counters {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", c.name, c.help, c.name, c.kind, c.name, c.value)
	}
	_, _ = w.Write([]byte(b.String()))
}
