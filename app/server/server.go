// Package server provides the HTTP server: edge guard, dashboard pages and the /api proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/google/uuid"

	"github.com/kycdash/screengate/app/server/audit"
	"github.com/kycdash/screengate/app/server/guard"
	"github.com/kycdash/screengate/app/server/internal/cookie"
	"github.com/kycdash/screengate/app/server/metrics"
	"github.com/kycdash/screengate/app/server/proxy"
	"github.com/kycdash/screengate/app/server/web"
)

// Server represents the HTTP server.
type Server struct {
	Deps
	Config
	proxy        *proxy.Proxy
	guard        *guard.Guard
	webHandler   *web.Handler
	auditHandler *audit.Handler
	staticFS     fs.FS // embedded static files
}

// Backend is the compliance backend as used by the proxy and the pages.
type Backend interface {
	proxy.Backend
	web.Backend
}

// Config holds server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Version         string

	BodySizeLimit    int64   // max request body size in bytes
	RequestsPerSec   float64 // max requests per second (rate limit)
	MaxConcurrent    int64   // max concurrent in-flight requests
	LoginConcurrency int64   // max concurrent login form submissions

	Guard        guard.Config
	Proxy        proxy.Config
	SecureCookie bool          // set Secure flag on the session cookie
	SessionTTL   time.Duration // session cookie lifetime when backend does not report one

	AuditToken      string // admin token for POST /audit/query, empty disables the endpoint
	AuditQueryLimit int    // max entries per audit query (default 10000)
}

// Deps holds server dependencies.
type Deps struct {
	Backend    Backend
	AuditStore audit.Store      // optional, nil to disable audit logging
	Metrics    *metrics.Metrics // optional, nil to disable metrics
}

// New creates a new Server instance.
func New(deps Deps, cfg Config) (*Server, error) {
	if deps.Backend == nil {
		return nil, errors.New("backend is required")
	}
	staticContent, err := web.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}

	s := &Server{Deps: deps, Config: cfg, staticFS: staticContent}

	// note: recorders are set only for non-nil metrics to avoid nil interface issue
	var guardRec guard.Recorder
	proxyDeps := proxy.Deps{Backend: deps.Backend}
	if deps.Metrics != nil {
		guardRec = deps.Metrics
		proxyDeps.Recorder = deps.Metrics
	}
	s.guard = guard.New(cfg.Guard, guardRec)

	cookieSettings := cookie.Settings{Secure: cfg.SecureCookie, TTL: cfg.SessionTTL}
	proxyCfg := cfg.Proxy
	proxyCfg.Cookie = cookieSettings
	if s.proxy, err = proxy.New(proxyDeps, proxyCfg); err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	gc := s.guard.Config()
	s.webHandler, err = web.New(deps.Backend, web.Config{
		ProtectedPrefix: gc.ProtectedPrefix,
		LoginPath:       gc.LoginPath,
		LandingPath:     gc.LandingPath,
		Cookie:          cookieSettings,
		Version:         cfg.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create web handler: %w", err)
	}

	if deps.AuditStore != nil && cfg.AuditToken != "" {
		s.auditHandler = audit.NewHandler(deps.AuditStore, cfg.AuditToken, cfg.AuditQueryLimit)
	}
	return s, nil
}

// Proxy returns the api proxy, used to reload routes.
func (s *Server) Proxy() *proxy.Proxy {
	return s.proxy
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.proxy.Activate(ctx); err != nil {
		return fmt.Errorf("failed to activate proxy: %w", err)
	}
	defer func() {
		if err := s.proxy.Close(); err != nil {
			log.Printf("[WARN] failed to close proxy: %v", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              s.Address,
		Handler:           s.routes(),
		ReadHeaderTimeout: s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}

	// graceful shutdown
	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] shutdown error: %v", err)
		}
	}()

	log.Printf("[INFO] started server on %s", s.Address)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// routes configures and returns the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware (applies to all routes)
	router.Use(
		rest.Recoverer(log.Default()),
		rest.RealIP, // must be before rate limiting to limit by real client IP
		s.rateLimiter(),
		rest.Throttle(s.maxConcurrent()),
		requestID, // before Trace, so Trace keeps the generated id
		rest.Trace,
		rest.SizeLimit(s.bodySizeLimit()),
		rest.AppInfo("screengate", "kycdash", s.Version),
		rest.Ping,
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]"), logger.IPfn(logger.AnonymizeIP)).Handler,
		s.pageGuard, // on the root, so unmatched methods and paths under the protected prefix redirect too
	)

	router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS))))

	router.Group().Route(func(webRouter *routegroup.Bundle) {
		webRouter.Use(s.loginThrottle)
		s.webHandler.Register(webRouter)
	})

	// api proxy, audit wraps the proxy to capture unauthorized requests too
	router.Group().Route(func(api *routegroup.Bundle) {
		api.Use(s.auditMiddleware())
		api.Handle(proxy.PathPrefix, s.proxy)
	})

	if s.auditHandler != nil {
		router.HandleFunc("POST /audit/query", s.auditHandler.HandleQuery)
	}
	if s.Metrics != nil {
		router.Handle("GET /metrics", s.Metrics.Handler())
	}

	return router
}

// pageGuard applies the edge guard to everything except the api proxy.
func (s *Server) pageGuard(next http.Handler) http.Handler {
	guarded := s.guard.Middleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, proxy.PathPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

// loginThrottle limits concurrent login form submissions to slow down brute force.
func (s *Server) loginThrottle(next http.Handler) http.Handler {
	throttled := rest.Throttle(s.loginConcurrency())(next)
	loginPath := s.guard.Config().LoginPath
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == loginPath {
			throttled.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID sets a uuid X-Request-ID on requests arriving without one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			r.Header.Set("X-Request-ID", uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

// bodySizeLimit returns the configured body size limit, or default 32MB if not set.
func (s *Server) bodySizeLimit() int64 {
	if s.BodySizeLimit > 0 {
		return s.BodySizeLimit
	}
	return 32 * 1024 * 1024
}

// requestsPerSec returns the configured rate limit (requests per second), or default 100 if not set.
func (s *Server) requestsPerSec() float64 {
	if s.RequestsPerSec > 0 {
		return s.RequestsPerSec
	}
	return 100
}

// maxConcurrent returns the configured max concurrent in-flight requests, or default 1000 if not set.
func (s *Server) maxConcurrent() int64 {
	if s.MaxConcurrent > 0 {
		return s.MaxConcurrent
	}
	return 1000
}

// loginConcurrency returns the configured login concurrency limit, or default 5 if not set.
func (s *Server) loginConcurrency() int64 {
	if s.LoginConcurrency > 0 {
		return s.LoginConcurrency
	}
	return 5
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.ShutdownTimeout > 0 {
		return s.ShutdownTimeout
	}
	return 10 * time.Second
}

// rateLimiter returns middleware that limits requests per second using tollbooth.
func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(s.requestsPerSec(), &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr", IndexFromRight: 0}) // use RemoteAddr (RealIP middleware sets it)
	lmt.SetBurst(int(s.requestsPerSec()))                                    // burst equals rate limit
	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}

// auditMiddleware returns the audit middleware or noop if audit is disabled.
func (s *Server) auditMiddleware() func(http.Handler) http.Handler {
	if s.AuditStore == nil {
		return audit.NoopMiddleware
	}
	return audit.Middleware(s.AuditStore, proxy.PathPrefix, s.proxy.RouteName)
}
