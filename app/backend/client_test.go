package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid base URL", func(t *testing.T) {
		c, err := New("http://localhost:8000")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", c.baseURL)
		assert.NotNil(t, c.requester)
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		c, err := New("https://api.example.com/v1/")
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1", c.BaseURL())
	})

	t.Run("empty base URL", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base URL is required")
	})

	t.Run("no scheme", func(t *testing.T) {
		_, err := New("localhost:8000")
		require.Error(t, err)
	})

	t.Run("custom paths", func(t *testing.T) {
		c, err := New("http://localhost:8000", WithPaths("/login", "", "/users/me"),
			WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, "/login", c.loginPath)
		assert.Equal(t, defaultLogoutPath, c.logoutPath)
		assert.Equal(t, "/users/me", c.mePath)
	})
}

func TestClient_URL(t *testing.T) {
	c, err := New("http://backend:8000/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000/api/products", c.URL("/products", ""))
	assert.Equal(t, "http://backend:8000/api/products?limit=10&offset=20", c.URL("products", "limit=10&offset=20"))
}

func TestClient_Do(t *testing.T) {
	t.Run("headers and query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/screening/logs", r.URL.Path)
			assert.Equal(t, "limit=5&search=acme+ltd", r.URL.RawQuery)
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"a":1}`, string(body))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/screening/logs",
			RawQuery: "limit=5&search=acme+ltd", Body: strings.NewReader(`{"a":1}`), ContentType: "application/json",
			Token: "tok123", RequestID: "req-1"})
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("no token no auth header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		resp, err := c.Do(context.Background(), Request{Path: "/countries"})
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("single attempt on 500", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		resp, err := c.Do(context.Background(), Request{Path: "/products"})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 1, calls)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = c.Do(ctx, Request{Path: "/onboarding"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrUnreachable)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		c, err := New(addr)
		require.NoError(t, err)
		_, err = c.Do(context.Background(), Request{Path: "/products"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnreachable)
	})
}

func TestClient_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)
			var creds Credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "ops@example.com", creds.Email)
			assert.Equal(t, "secret", creds.Password)
			_, _ = w.Write([]byte(`{"status":"success","data":{"access_token":"jwt-abc","expires_in":3600}}`))
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		sess, err := c.Login(context.Background(), Credentials{Email: "ops@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "jwt-abc", sess.Token)
		assert.Equal(t, time.Hour, sess.TTL)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		_, err = c.Login(context.Background(), Credentials{Email: "x", Password: "y"})
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("no token in response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":true}`))
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		_, err = c.Login(context.Background(), Credentials{Email: "x", Password: "y"})
		require.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("server error with message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		}))
		defer srv.Close()

		c, err := New(srv.URL)
		require.NoError(t, err)
		_, err = c.Login(context.Background(), Credentials{Email: "x", Password: "y"})
		var respErr *ResponseError
		require.True(t, errors.As(err, &respErr))
		assert.Equal(t, http.StatusBadGateway, respErr.StatusCode)
		assert.Equal(t, "upstream down", respErr.Message)
	})
}

func TestClient_MeAndLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/auth/me":
			_, _ = w.Write([]byte(`{"status":true,"data":{"id":7,"email":"ops@example.com","first_name":"Ada","last_name":"Lovelace","role":"analyst","company":{"name":"Acme"}}}`))
		case "/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	user, err := c.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, User{ID: "7", Email: "ops@example.com", Name: "Ada Lovelace", Role: "analyst", Company: "Acme"}, user)

	_, err = c.Me(context.Background(), "revoked")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Me(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, c.Logout(context.Background(), "good"))
	require.ErrorIs(t, c.Logout(context.Background(), "bad"), ErrUnauthorized)
}
