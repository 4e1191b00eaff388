// Package primeboard is the public API for embedding the leaderboard server.
//
// Consumers import this package to construct and run the server without
// forking it:
//
//	app, err := primeboard.New(
//	    primeboard.WithVersion(version),
//	    primeboard.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: primeboard (root)
// imports internal/*, but internal/* never imports primeboard (root).
package primeboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/primeboard/primeboard/internal/auth"
	"github.com/primeboard/primeboard/internal/config"
	"github.com/primeboard/primeboard/internal/mcp"
	"github.com/primeboard/primeboard/internal/parse"
	"github.com/primeboard/primeboard/internal/ratelimit"
	"github.com/primeboard/primeboard/internal/server"
	"github.com/primeboard/primeboard/internal/service/ingest"
	"github.com/primeboard/primeboard/internal/service/rank"
	"github.com/primeboard/primeboard/internal/service/recompute"
	"github.com/primeboard/primeboard/internal/storage"
	"github.com/primeboard/primeboard/internal/telemetry"
	"github.com/primeboard/primeboard/migrations"
)

// App is the leaderboard server lifecycle. Construct with New(), run with
// Run(). App has no public fields — use New() options to configure it.
type App struct {
	cfg          config.Config
	db           *storage.DB
	srv          *server.Server
	builder      *recompute.Builder
	otelShutdown func(context.Context) error
	logger       *slog.Logger
	version      string
}

// New initialises the server. It connects to the database, runs migrations,
// wires all subsystems, and returns a ready-to-run App. It does NOT start
// any goroutines or accept HTTP connections — call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("primeboard starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := storage.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("storage: %w", err)
	}

	if err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		db.Close()
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("migrations: %w", err)
	}

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		db.Close()
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("auth: %w", err)
	}

	// The parser threads the active cycle through durable state so a name
	// learned in one paste carries into the next.
	parser := parse.New(storage.CycleStore{DB: db}, logger)
	ingestSvc := ingest.New(db, parser, logger)
	rankSvc := rank.New(db, logger)
	builder := recompute.New(db, cfg.BoardTopN, logger)

	mcpSrv := mcp.New(db, ingestSvc, rankSvc, logger)

	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		logger.Info("rate limiting: memory (in-process token bucket)",
			"rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		DB:                  db,
		JWTMgr:              jwtMgr,
		IngestSvc:           ingestSvc,
		RankSvc:             rankSvc,
		Builder:             builder,
		Logger:              logger,
		Limiter:             limiter,
		MCPServer:           mcpSrv.MCPServer(),
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		Version:             version,
	})

	// Seed the bootstrap admin credential.
	if cfg.AdminAPIKey != "" {
		if err := server.SeedAdminKey(context.Background(), db, cfg.AdminAPIKey); err != nil {
			db.Close()
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("admin seed: %w", err)
		}
	} else {
		logger.Warn("no PRIMEBOARD_ADMIN_API_KEY configured, no admin bootstrap")
	}

	return &App{
		cfg:          cfg,
		db:           db,
		srv:          srv,
		builder:      builder,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// Run starts the periodic recompute loop and the HTTP server, then blocks
// until ctx is cancelled or a fatal server error occurs. On return, Shutdown
// is called automatically — callers should not call Shutdown separately.
func (a *App) Run(ctx context.Context) error {
	go a.builder.RunPeriodic(ctx, a.cfg.RecomputeInterval)

	// Prime the snapshot cache so board reads work before the first tick.
	if _, err := a.builder.Run(ctx); err != nil && !errors.Is(err, recompute.ErrAlreadyRunning) {
		a.logger.Warn("initial leaderboard recompute failed", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return a.Shutdown(context.Background())
}

// Shutdown drains in-flight HTTP requests, then closes the database pool and
// OTEL provider.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("primeboard shutting down")

	httpCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(httpCtx); err != nil {
		a.logger.Error("http shutdown error", "error", err)
	}

	_ = a.otelShutdown(context.Background())
	a.db.Close()

	a.logger.Info("primeboard stopped")
	return nil
}
