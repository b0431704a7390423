// Package proxy implements the same-origin /api proxy. Each route of the table forwards the
// browser request to the compliance backend with the bearer token from the session cookie and
// translates the backend response into a uniform JSON envelope.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/enum"
	"github.com/kycdash/screengate/app/server/internal/cookie"
)

//go:generate moq -out mocks/recorder.go -pkg mocks -skip-ensure -fmt goimports . Recorder

// defaults for proxy configuration
const (
	defaultMaxResponse     = 64 << 20
	defaultMultipartMemory = 32 << 20
	defaultCacheMaxKeys    = 1000
)

// errResponseTooLarge is returned when the backend response exceeds the configured limit.
var errResponseTooLarge = errors.New("backend response too large")

// Backend is the compliance backend used to forward requests.
type Backend interface {
	Do(ctx context.Context, r backend.Request) (*http.Response, error)
	URL(path, rawQuery string) string
}

// Recorder collects proxy metrics.
type Recorder interface {
	ProxyRequest(route string, status int, duration time.Duration)
	CacheHit(route string)
}

// Deps holds the proxy dependencies.
type Deps struct {
	Backend  Backend
	Recorder Recorder // optional
}

// Config holds the proxy configuration.
type Config struct {
	RoutesFile      string // empty means the built-in table
	HotReload       bool   // watch RoutesFile and reload on change
	Timeout         time.Duration
	CacheTTL        time.Duration // zero disables the response cache
	CacheMaxKeys    int
	MaxResponseSize int64
	MultipartMemory int64
	Cookie          cookie.Settings
}

// Proxy dispatches /api requests to routes of a hot-swappable table.
type Proxy struct {
	backend   Backend
	recorder  Recorder
	cfg       Config
	validator ConfigValidator
	cache     *responseCache

	mu     sync.RWMutex
	mux    *http.ServeMux
	routes []Route
	names  map[string]string // mux pattern to route name
}

// New makes a proxy and loads the route table from the file or the built-in one.
func New(deps Deps, cfg Config) (*Proxy, error) {
	if deps.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = defaultMaxResponse
	}
	if cfg.MultipartMemory <= 0 {
		cfg.MultipartMemory = defaultMultipartMemory
	}
	if cfg.CacheMaxKeys <= 0 {
		cfg.CacheMaxKeys = defaultCacheMaxKeys
	}

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	cache, err := newResponseCache(cfg.CacheTTL, cfg.CacheMaxKeys)
	if err != nil {
		return nil, err
	}

	p := &Proxy{backend: deps.Backend, recorder: deps.Recorder, cfg: cfg, validator: validator, cache: cache}

	var rc *Config
	if cfg.RoutesFile == "" {
		rc, err = DefaultConfig(validator)
	} else {
		rc, err = LoadConfig(cfg.RoutesFile, validator)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}
	routes, err := rc.Table()
	if err != nil {
		return nil, fmt.Errorf("invalid routes: %w", err)
	}
	if err := p.SetRoutes(routes); err != nil {
		return nil, err
	}
	log.Printf("[INFO] proxy loaded %d routes", len(routes))
	return p, nil
}

// ServeHTTP dispatches the request with the current route table.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	mux := p.mux
	p.mu.RUnlock()
	mux.ServeHTTP(w, r)
}

// RouteName returns the name of the route serving r, empty if no route matches.
func (p *Proxy) RouteName(r *http.Request) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, pattern := p.mux.Handler(r)
	return p.names[pattern]
}

// Routes returns a copy of the current route table.
func (p *Proxy) Routes() []Route {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.routes)
}

// SetRoutes validates routes and swaps the table. On error the current table stays.
func (p *Proxy) SetRoutes(routes []Route) error {
	for _, rt := range routes {
		if err := rt.validate(); err != nil {
			return err
		}
	}
	mux, err := p.buildMux(routes)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(routes))
	for _, rt := range routes {
		names[rt.Pattern()] = rt.Name
	}
	p.mu.Lock()
	p.mux = mux
	p.routes = slices.Clone(routes)
	p.names = names
	p.mu.Unlock()
	p.cache.purge()
	return nil
}

// Reload re-reads the routes file and swaps the table. The current table stays on error.
func (p *Proxy) Reload() error {
	if p.cfg.RoutesFile == "" {
		return errors.New("routes file not set")
	}
	rc, err := LoadConfig(p.cfg.RoutesFile, p.validator)
	if err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}
	routes, err := rc.Table()
	if err != nil {
		return fmt.Errorf("invalid routes: %w", err)
	}
	if err := p.SetRoutes(routes); err != nil {
		return err
	}
	log.Printf("[INFO] routes reloaded from %s, %d routes", p.cfg.RoutesFile, len(routes))
	return nil
}

// Activate starts the routes file watcher if hot reload is enabled.
// The watcher stops when the context is canceled.
func (p *Proxy) Activate(ctx context.Context) error {
	if !p.cfg.HotReload || p.cfg.RoutesFile == "" {
		return nil
	}
	return p.startWatcher(ctx)
}

// Close releases the response cache.
func (p *Proxy) Close() error {
	return p.cache.close()
}

// buildMux registers all routes on a new mux. Conflicting or malformed patterns are reported
// as errors instead of panics.
func (p *Proxy) buildMux(routes []Route) (mux *http.ServeMux, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("invalid route table: %v", rec)
		}
	}()
	mux = http.NewServeMux()
	for _, rt := range routes {
		mux.Handle(rt.Pattern(), p.handler(rt))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, failure(http.StatusNotFound, enum.ErrorKindNotFound, "Not found"))
	})
	return mux, nil
}

// handler returns the forwarding handler of a single route.
func (p *Proxy) handler(rt Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := p.forward(w, r, rt)
		if p.recorder != nil {
			p.recorder.ProxyRequest(rt.Name, status, time.Since(start))
		}
	})
}

// forward runs the shared proxy flow for a route and returns the status sent to the browser.
func (p *Proxy) forward(w http.ResponseWriter, r *http.Request, rt Route) int {
	token := cookie.Token(r)
	if rt.Auth && token == "" {
		return writeResult(w, failure(http.StatusUnauthorized, enum.ErrorKindUnauthorized, "Unauthorized - No session token"))
	}
	if rt.Session == enum.SessionActionLogout {
		return p.logout(w, r, rt, token)
	}

	body, err := prepareBody(r, rt.Body, p.cfg.MultipartMemory)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return writeResult(w, reqErr.result())
		}
		log.Printf("[WARN] route %s: %v", rt.Name, err)
		return writeResult(w, failure(http.StatusBadRequest, enum.ErrorKindBadRequest, "Invalid request body"))
	}

	timeout := rt.Timeout
	if timeout == 0 {
		timeout = p.cfg.Timeout
	}
	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := backend.Request{
		Method:      rt.Method,
		Path:        rt.BackendPath(r),
		RawQuery:    r.URL.RawQuery,
		Body:        body.body,
		ContentType: body.contentType,
		Token:       token,
		RequestID:   r.Header.Get("X-Request-ID"),
	}
	resp, err := p.fetch(ctx, rt, req)
	if err != nil {
		return writeResult(w, p.transportFailure(rt, err, timeout))
	}

	if resp.binary() {
		return writeBinary(w, resp, rt.AttachmentName(r, defaultFilename(resp.Header.Get("Content-Type"))))
	}
	res, decoded := interpret(resp)
	if rt.Session == enum.SessionActionLogin {
		res = p.login(w, res, decoded)
	}
	return writeResult(w, res)
}

// fetch calls the backend and reads the response, using the cache for cacheable routes.
func (p *Proxy) fetch(ctx context.Context, rt Route, req backend.Request) (backendResponse, error) {
	call := func() (backendResponse, error) {
		resp, err := p.backend.Do(ctx, req)
		if err != nil {
			return backendResponse{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxResponseSize+1))
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return backendResponse{}, fmt.Errorf("%w: read response: %w", backend.ErrTimeout, err)
			}
			return backendResponse{}, fmt.Errorf("%w: read response: %w", backend.ErrUnreachable, err)
		}
		if int64(len(data)) > p.cfg.MaxResponseSize {
			return backendResponse{}, errResponseTooLarge
		}
		return backendResponse{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
	}

	// responses fetched with a caller's token are never shared
	if p.cache == nil || !rt.Cache || req.Token != "" {
		return call()
	}
	resp, hit, err := p.cache.get(rt.Name+" "+p.backend.URL(req.Path, req.RawQuery), call)
	if hit && p.recorder != nil {
		p.recorder.CacheHit(rt.Name)
	}
	return resp, err
}

// transportFailure maps a failed backend call to a result.
func (p *Proxy) transportFailure(rt Route, err error, timeout time.Duration) Result {
	log.Printf("[WARN] route %s: backend call failed: %v", rt.Name, err)
	switch {
	case errors.Is(err, backend.ErrTimeout):
		msg := "Request timeout - backend did not respond in time"
		if timeout > 0 {
			msg = fmt.Sprintf("Request timeout - backend did not respond within %s", timeout)
		}
		return failure(http.StatusServiceUnavailable, enum.ErrorKindTimeout, msg)
	case errors.Is(err, errResponseTooLarge):
		return failure(http.StatusBadGateway, enum.ErrorKindBackendError, "Backend response too large")
	}
	return failure(http.StatusServiceUnavailable, enum.ErrorKindBackendUnreachable, "Backend connection failed - service unavailable")
}
