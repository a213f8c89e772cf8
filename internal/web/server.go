// Package web serves the vehicle table and its filter, sort and export API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/export"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
	"github.com/kuncheriajose/firehawk-frontend/internal/web/middleware"
)

// Server is the HTTP front end for a Browser.
type Server struct {
	browser    *core.Browser
	sink       export.Sink
	exports    *export.Limiter
	exportBase string
	cfg        config.ServerConfig
	router     *chi.Mux
	server     *http.Server
	limiter    *rateLimiter
}

// NewServer creates a server for browser. sink may be nil, in which case
// POST /api/export is unavailable.
func NewServer(browser *core.Browser, sink export.Sink, cfg *config.Config) *Server {
	s := &Server{
		browser:    browser,
		sink:       sink,
		exports:    export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait),
		exportBase: cfg.Export.BaseName,
		cfg:        cfg.Server,
		router:     chi.NewRouter(),
	}
	if s.exportBase == "" {
		s.exportBase = export.DefaultBaseName
	}
	s.setupMiddleware(cfg.Security.TrustedProxies)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(trustedProxies []string) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(trustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	// 300 requests per minute per client address
	s.limiter = newRateLimiter(300, time.Minute)
	s.router.Use(s.limiter.middleware)
}

func (s *Server) setupRoutes() {
	// Page
	s.router.Get("/", s.handleIndex)
	s.router.Post("/", s.handleIndexForm)
	s.router.Post("/sort/{column}", s.handleIndexSort)

	// Operations
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/cars", s.handleCars)
		r.Get("/options", s.handleOptions)

		r.Post("/filters", s.handleFilters)
		r.Post("/filters/clear", s.handleClearFilters)
		r.Post("/sort/{column}", s.handleSort)

		r.Get("/export", s.handleExportDownload)
		r.Post("/export", s.handleExportSink)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	addr := s.cfg.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown lets running exports finish, then gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()

	if n := s.exports.Active(); n > 0 {
		logger := logging.FromContext(ctx)
		logger.Info("waiting for exports to complete", "active", n)
		if err := s.exports.Wait(ctx); err != nil {
			logger.Warn("exports did not complete in time", "error", err)
		}
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// The page ships its styles inline and loads nothing else.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a fixed-window limiter keyed by client address.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops idle visitors once per window until stop.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow consumes a token for ip if one is left.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r.RemoteAddr)) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON. Encoding errors are logged since the status
// line has already been sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
