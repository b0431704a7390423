package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
)

// defaults for client configuration
const (
	defaultTimeout    = 60 * time.Second
	defaultLoginPath  = "/auth/login"
	defaultLogoutPath = "/auth/logout"
	defaultMePath     = "/auth/me"
	maxHelperBodySize = 1 << 20
)

// Client is a compliance backend client.
type Client struct {
	baseURL    string
	requester  *requester.Requester
	loginPath  string
	logoutPath string
	mePath     string
}

// clientConfig holds configuration options during client construction.
type clientConfig struct {
	timeout    time.Duration
	httpClient *http.Client
	loginPath  string
	logoutPath string
	mePath     string
}

// Option is a functional option for configuring the client.
type Option func(*clientConfig)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *clientConfig) {
		cfg.timeout = timeout
	}
}

// WithHTTPClient sets a custom http.Client.
// Note: when using WithHTTPClient, the WithTimeout option has no effect
// since timeout is configured on the http.Client directly.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpClient = client
	}
}

// WithPaths overrides backend paths used by Login, Logout and Me. Empty values keep defaults.
func WithPaths(login, logout, me string) Option {
	return func(cfg *clientConfig) {
		if login != "" {
			cfg.loginPath = login
		}
		if logout != "" {
			cfg.logoutPath = logout
		}
		if me != "" {
			cfg.mePath = me
		}
	}
}

// Request describes a single call to the backend.
type Request struct {
	Method      string
	Path        string    // backend path, appended to the base URL
	RawQuery    string    // copied verbatim to the outbound URL
	Body        io.Reader // nil for no body
	ContentType string    // empty means no Content-Type header
	Token       string    // bearer token, optional
	RequestID   string    // propagated as X-Request-ID, optional
}

// Credentials are the login form fields sent to the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	Token string
	TTL   time.Duration // zero if backend did not report expiration
	Body  any           // decoded login response
}

// New creates a new backend client with the given base URL and options.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("base URL %q must start with http:// or https://", baseURL)
	}

	// normalize base URL
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{
		timeout:    defaultTimeout,
		loginPath:  defaultLoginPath,
		logoutPath: defaultLogoutPath,
		mePath:     defaultMePath,
	}

	// apply options
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	// no retry middleware, every call is a single attempt
	return &Client{
		baseURL:    baseURL,
		requester:  requester.New(*httpClient, middleware.Header("Accept", "application/json")),
		loginPath:  cfg.loginPath,
		logoutPath: cfg.logoutPath,
		mePath:     cfg.mePath,
	}, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds the full backend URL for a path and raw query.
func (c *Client) URL(path, rawQuery string) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// Do sends a request to the backend and returns the raw response.
// Caller must close the response body. Transport failures are wrapped with
// ErrTimeout or ErrUnreachable; http error statuses are not errors here.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	body := r.Body
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(r.Path, r.RawQuery), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.RequestID != "" {
		req.Header.Set("X-Request-ID", r.RequestID)
	}

	resp, err := c.requester.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	return resp, nil
}

// Login posts credentials to the backend login endpoint and extracts the session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode credentials: %w", err)
	}

	body, err := c.call(ctx, Request{
		Method:      http.MethodPost,
		Path:        c.loginPath,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
	})
	if err != nil {
		return Session{}, err
	}

	token, ttl := SessionToken(body)
	if token == "" {
		return Session{}, ErrNoToken
	}
	return Session{Token: token, TTL: ttl, Body: body}, nil
}

// Logout invalidates the token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.call(ctx, Request{Method: http.MethodPost, Path: c.logoutPath, Token: token})
	return err
}

// Me returns the user owning the token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthorized
	}
	body, err := c.call(ctx, Request{Method: http.MethodGet, Path: c.mePath, Token: token})
	if err != nil {
		return User{}, err
	}
	user, ok := UserFromBody(body)
	if !ok {
		return User{}, errors.New("unexpected current user response")
	}
	return user, nil
}

// call performs a request and decodes the JSON response, mapping error statuses to errors.
func (c *Client) call(ctx context.Context, r Request) (any, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxHelperBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var body any
	if len(bytes.TrimSpace(data)) > 0 {
		if jerr := json.Unmarshal(data, &body); jerr != nil {
			body = strings.TrimSpace(string(data))
		}
	}

	if err := checkResponse(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkResponse maps HTTP status codes to errors.
func checkResponse(status int, body any) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return &ResponseError{StatusCode: status, Message: ErrorMessage(body)}
	}
}
