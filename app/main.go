package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/server"
	"github.com/kycdash/screengate/app/server/guard"
	"github.com/kycdash/screengate/app/server/metrics"
	"github.com/kycdash/screengate/app/server/proxy"
	"github.com/kycdash/screengate/app/store"
)

type options struct {
	Listen string `long:"listen" env:"LISTEN" default:":8080" description:"listen address"`

	Backend struct {
		URL        string        `long:"url" env:"URL" required:"true" description:"compliance backend base url"`
		Timeout    time.Duration `long:"timeout" env:"TIMEOUT" default:"60s" description:"default backend request timeout"`
		LoginPath  string        `long:"login-path" env:"LOGIN_PATH" default:"/auth/login" description:"backend login path"`
		LogoutPath string        `long:"logout-path" env:"LOGOUT_PATH" default:"/auth/logout" description:"backend logout path"`
		MePath     string        `long:"me-path" env:"ME_PATH" default:"/auth/me" description:"backend current user path"`
	} `group:"backend" namespace:"backend" env-namespace:"BACKEND"`

	Session struct {
		Secure bool          `long:"secure" env:"SECURE" description:"set Secure flag on the session cookie"`
		TTL    time.Duration `long:"ttl" env:"TTL" default:"24h" description:"session cookie lifetime if backend does not report one"`
	} `group:"session" namespace:"session" env-namespace:"SESSION"`

	Guard struct {
		Protected string `long:"protected" env:"PROTECTED" default:"/dashboard" description:"protected path prefix"`
		Login     string `long:"login" env:"LOGIN" default:"/login" description:"login page path"`
		Landing   string `long:"landing" env:"LANDING" default:"/dashboard/profile" description:"landing page after login"`
	} `group:"guard" namespace:"guard" env-namespace:"GUARD"`

	Routes struct {
		File  string `long:"file" env:"FILE" description:"routes file (yaml or toml), built-in table if empty"`
		Watch bool   `long:"watch" env:"WATCH" description:"reload routes file on change"`
	} `group:"routes" namespace:"routes" env-namespace:"ROUTES"`

	Cache struct {
		TTL     time.Duration `long:"ttl" env:"TTL" default:"10m" description:"response cache ttl for cacheable routes, 0 to disable"`
		MaxKeys int           `long:"max-keys" env:"MAX_KEYS" default:"1000" description:"max cached responses"`
	} `group:"cache" namespace:"cache" env-namespace:"CACHE"`

	Limits struct {
		Body       int64   `long:"body" env:"BODY" default:"33554432" description:"max request body size in bytes"`
		RPS        float64 `long:"rps" env:"RPS" default:"100" description:"max requests per second per client ip"`
		Concurrent int64   `long:"concurrent" env:"CONCURRENT" default:"1000" description:"max concurrent requests"`
		Login      int64   `long:"login" env:"LOGIN" default:"5" description:"max concurrent login form submissions"`
	} `group:"limits" namespace:"limits" env-namespace:"LIMITS"`

	Server struct {
		ReadTimeout     time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"5s" description:"read header timeout"`
		WriteTimeout    time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" default:"75s" description:"write timeout"`
		IdleTimeout     time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" default:"30s" description:"idle timeout"`
		ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" default:"10s" description:"graceful shutdown timeout"`
	} `group:"server" namespace:"server" env-namespace:"SERVER"`

	Audit struct {
		Enabled    bool          `long:"enabled" env:"ENABLED" description:"enable audit trail of api requests"`
		DB         string        `long:"db" env:"DB" default:"screengate.db" description:"audit database, sqlite file or postgres://..."`
		Token      string        `long:"token" env:"TOKEN" description:"admin token for POST /audit/query"`
		Retention  time.Duration `long:"retention" env:"RETENTION" default:"2160h" description:"keep audit entries for this long, 0 keeps forever"`
		QueryLimit int           `long:"query-limit" env:"QUERY_LIMIT" default:"10000" description:"max entries per audit query"`
	} `group:"audit" namespace:"audit" env-namespace:"AUDIT"`

	Metrics struct {
		Enabled bool `long:"enabled" env:"ENABLED" description:"expose prometheus metrics on /metrics"`
	} `group:"metrics" namespace:"metrics" env-namespace:"METRICS"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Printf("screengate %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	setupLog(opts.Dbg, opts.Audit.Token)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
}

// run wires dependencies and runs the server until ctx is canceled.
func run(ctx context.Context, opts options) error {
	client, err := backend.New(opts.Backend.URL,
		backend.WithTimeout(opts.Backend.Timeout),
		backend.WithPaths(opts.Backend.LoginPath, opts.Backend.LogoutPath, opts.Backend.MePath),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}
	log.Printf("[INFO] backend %s", client.BaseURL())

	deps := server.Deps{Backend: client}
	if opts.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	// note: AuditStore is set only when enabled to avoid nil interface issue
	if opts.Audit.Enabled {
		st, err := store.New(opts.Audit.DB)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Printf("[WARN] failed to close audit store: %v", err)
			}
		}()
		deps.AuditStore = st
		if opts.Audit.Retention > 0 {
			go auditCleanup(ctx, st, opts.Audit.Retention, time.Hour)
		}
		if opts.Audit.Token == "" {
			log.Printf("[WARN] audit token not set, audit query endpoint disabled")
		}
	}

	srv, err := server.New(deps, server.Config{
		Address:          opts.Listen,
		ReadTimeout:      opts.Server.ReadTimeout,
		WriteTimeout:     opts.Server.WriteTimeout,
		IdleTimeout:      opts.Server.IdleTimeout,
		ShutdownTimeout:  opts.Server.ShutdownTimeout,
		Version:          revision,
		BodySizeLimit:    opts.Limits.Body,
		RequestsPerSec:   opts.Limits.RPS,
		MaxConcurrent:    opts.Limits.Concurrent,
		LoginConcurrency: opts.Limits.Login,
		Guard: guard.Config{
			ProtectedPrefix: opts.Guard.Protected,
			LoginPath:       opts.Guard.Login,
			LandingPath:     opts.Guard.Landing,
		},
		SecureCookie: opts.Session.Secure,
		SessionTTL:   opts.Session.TTL,
		Proxy: proxy.Config{
			RoutesFile:      opts.Routes.File,
			HotReload:       opts.Routes.Watch,
			Timeout:         opts.Backend.Timeout,
			CacheTTL:        opts.Cache.TTL,
			CacheMaxKeys:    opts.Cache.MaxKeys,
			MultipartMemory: opts.Limits.Body,
		},
		AuditToken:      opts.Audit.Token,
		AuditQueryLimit: opts.Audit.QueryLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if opts.Routes.File != "" {
		go reloadOnHUP(ctx, srv.Proxy())
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// auditCleanup deletes audit entries older than retention, once at start and then every interval.
func auditCleanup(ctx context.Context, st *store.Store, retention, interval time.Duration) {
	cleanup := func() {
		n, err := st.DeleteAuditOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[WARN] audit cleanup failed: %v", err)
			}
			return
		}
		if n > 0 {
			log.Printf("[INFO] audit cleanup removed %d entries", n)
		}
	}

	cleanup()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}

// reloadOnHUP reloads the routes file on SIGHUP.
func reloadOnHUP(ctx context.Context, p *proxy.Proxy) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := p.Reload(); err != nil {
				log.Printf("[WARN] failed to reload routes, keeping current table: %v", err)
			}
		}
	}
}

func setupLog(dbg bool, secrets ...string) {
	logOpts := []log.Option{log.Msec, log.LevelBraces, log.StackTraceOnError}
	if dbg {
		logOpts = []log.Option{log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces, log.StackTraceOnError}
	}

	var nonEmpty []string
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, log.Secret(nonEmpty...))
	}
	log.SetupStdLogger(logOpts...)
	log.Setup(logOpts...)
}
