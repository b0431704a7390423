package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lcw/v2"
)

// responseCache keeps successful responses of public routes in memory.
type responseCache struct {
	lc lcw.LoadingCache[backendResponse]
}

// errUncacheable carries a response that should be returned but not stored.
type errUncacheable struct {
	resp backendResponse
}

func (e *errUncacheable) Error() string {
	return fmt.Sprintf("status %d is not cacheable", e.resp.Status)
}

// newResponseCache makes an expirable cache, returns nil if ttl is not positive.
func newResponseCache(ttl time.Duration, maxKeys int) (*responseCache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	o := lcw.NewOpts[backendResponse]()
	lc, err := lcw.NewExpirableCache(o.TTL(ttl), o.MaxKeys(maxKeys))
	if err != nil {
		return nil, fmt.Errorf("failed to make response cache: %w", err)
	}
	return &responseCache{lc: lc}, nil
}

// get returns a cached response or calls fetch. Only 200 responses are stored.
// hit reports whether fetch was skipped.
func (c *responseCache) get(key string, fetch func() (backendResponse, error)) (resp backendResponse, hit bool, err error) {
	called := false
	resp, err = c.lc.Get(key, func() (backendResponse, error) {
		called = true
		r, err := fetch()
		if err != nil {
			return backendResponse{}, err
		}
		if r.Status != http.StatusOK {
			return backendResponse{}, &errUncacheable{resp: r}
		}
		return r, nil
	})
	var u *errUncacheable
	if errors.As(err, &u) {
		return u.resp, false, nil
	}
	if err != nil {
		return backendResponse{}, false, err
	}
	return resp, !called, nil
}

// purge drops all cached responses, used on route table reload.
func (c *responseCache) purge() {
	if c != nil {
		c.lc.Purge()
	}
}

func (c *responseCache) close() error {
	if c == nil {
		return nil
	}
	return c.lc.Close()
}
