package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycdash/screengate/app/enum"
	"github.com/kycdash/screengate/app/store"
)

func TestOptions_Defaults(t *testing.T) {
	var opts options
	_, err := flags.NewParser(&opts, flags.Default).ParseArgs([]string{"--backend.url=http://backend:8000"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", opts.Listen)
	assert.Equal(t, "http://backend:8000", opts.Backend.URL)
	assert.Equal(t, 60*time.Second, opts.Backend.Timeout)
	assert.Equal(t, 24*time.Hour, opts.Session.TTL)
	assert.Equal(t, "/dashboard", opts.Guard.Protected)
	assert.Equal(t, "/login", opts.Guard.Login)
	assert.Equal(t, "/dashboard/profile", opts.Guard.Landing)
	assert.Equal(t, 10*time.Minute, opts.Cache.TTL)
	assert.Equal(t, int64(32*1024*1024), opts.Limits.Body)
	assert.Equal(t, 90*24*time.Hour, opts.Audit.Retention)
	assert.False(t, opts.Audit.Enabled)
	assert.False(t, opts.Metrics.Enabled)
}

func TestOptions_BackendRequired(t *testing.T) {
	var opts options
	_, err := flags.NewParser(&opts, flags.None).ParseArgs([]string{})
	require.Error(t, err)
}

func TestOptions_Env(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://compliance.example.com")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("CACHE_TTL", "0s")

	var opts options
	_, err := flags.NewParser(&opts, flags.Default).ParseArgs([]string{})
	require.NoError(t, err)
	assert.Equal(t, "https://compliance.example.com", opts.Backend.URL)
	assert.True(t, opts.Session.Secure)
	assert.Equal(t, time.Duration(0), opts.Cache.TTL)
}

func TestRun(t *testing.T) {
	be := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":[{"code":"AE","name":"United Arab Emirates"}]}`))
	}))
	defer be.Close()

	port := freePort(t)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	var opts options
	_, err := flags.NewParser(&opts, flags.Default).ParseArgs([]string{
		"--backend.url=" + be.URL,
		fmt.Sprintf("--listen=127.0.0.1:%d", port),
		"--audit.enabled",
		"--audit.db=" + dbPath,
		"--audit.token=admin-secret",
		"--metrics.enabled",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, opts) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForServer(t, base+"/ping")

	resp, err := http.Get(base + "/api/countries")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "United Arab Emirates")

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "audit database created")
}

func TestRun_BadBackendURL(t *testing.T) {
	var opts options
	opts.Backend.URL = "backend:8000"
	err := run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend client")
}

func TestAuditCleanup(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.LogAudit(ctx, store.AuditEntry{Timestamp: time.Now().Add(-48 * time.Hour), Path: "/api/old",
		Method: http.MethodGet, Action: enum.AuditActionRead, Result: enum.AuditResultSuccess, ActorType: enum.ActorTypePublic, Actor: "anonymous", Status: 200}))
	require.NoError(t, st.LogAudit(ctx, store.AuditEntry{Timestamp: time.Now(), Path: "/api/new",
		Method: http.MethodGet, Action: enum.AuditActionRead, Result: enum.AuditResultSuccess, ActorType: enum.ActorTypePublic, Actor: "anonymous", Status: 200}))

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		auditCleanup(cctx, st, 24*time.Hour, time.Hour)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, total, qerr := st.QueryAudit(ctx, store.AuditQuery{})
		return qerr == nil && total == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestSetupLog(t *testing.T) {
	setupLog(true, "admin-secret", "")
	setupLog(false)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func waitForServer(t *testing.T, url string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec // test url
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}
