package proxy

import (
	"net/http"

	log "github.com/go-pkgz/lgr"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/enum"
	"github.com/kycdash/screengate/app/server/internal/cookie"
)

// secretFields are removed from login responses before they reach the browser.
var secretFields = append([]string{"refresh_token"}, backend.TokenFields...)

// login sets the session cookie from a successful login response and strips the token from it.
// A successful response without a token becomes a 502.
func (p *Proxy) login(w http.ResponseWriter, res Result, body any) Result {
	if !res.OK {
		return res
	}
	token, ttl := backend.SessionToken(body)
	if token == "" {
		log.Printf("[WARN] login response has no session token")
		return failure(http.StatusBadGateway, enum.ErrorKindBackendError, "Login response did not include a session token")
	}
	p.cfg.Cookie.Set(w, token, ttl)
	log.Printf("[DEBUG] session started for token %s", cookie.Mask(token))

	stripSecrets(res.Data)
	stripSecrets(res.Meta)
	if res.Message == "" {
		res.Message = "Login successful"
	}
	return res
}

// logout calls the backend logout when a token is present and always clears the cookie.
// Backend failures are logged, the browser always gets a successful envelope.
func (p *Proxy) logout(w http.ResponseWriter, r *http.Request, rt Route, token string) int {
	if token != "" {
		ctx := r.Context()
		resp, err := p.backend.Do(ctx, backend.Request{
			Method:    rt.Method,
			Path:      rt.BackendPath(r),
			Token:     token,
			RequestID: r.Header.Get("X-Request-ID"),
		})
		switch {
		case err != nil:
			log.Printf("[WARN] backend logout failed: %v", err)
		default:
			if resp.StatusCode >= http.StatusBadRequest {
				log.Printf("[WARN] backend logout returned %d", resp.StatusCode)
			}
			_ = resp.Body.Close()
		}
	}
	p.cfg.Cookie.Clear(w)
	return writeResult(w, Result{OK: true, Status: http.StatusOK, Message: "Logged out"})
}

// stripSecrets removes token fields from a decoded object and its nested "data".
func stripSecrets(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, f := range secretFields {
		delete(m, f)
	}
	stripSecrets(m["data"])
}
