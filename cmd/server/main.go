package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/export"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
	"github.com/kuncheriajose/firehawk-frontend/internal/source"
	"github.com/kuncheriajose/firehawk-frontend/internal/state"
	"github.com/kuncheriajose/firehawk-frontend/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", cfg.Source.Kind,
		"state", cfg.State.Kind,
		"export", cfg.Export.Kind,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = openPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	kv, closeKV, err := state.Open(ctx, cfg.State, pool)
	if err != nil {
		slog.Error("failed to open state store", "kind", cfg.State.Kind, "error", err)
		os.Exit(1)
	}
	defer closeKV()

	browser := core.NewBrowser(state.New(kv, cfg.State.Key))

	slog.Info("schemas registered", "count", core.SchemaCount())
	for _, s := range core.Schemas() {
		slog.Debug("schema", "key", s.Key, "priority", s.Priority, "columns", len(s.Columns))
	}

	src, closeSource, err := source.Open(ctx, cfg.Source, pool)
	if err != nil {
		slog.Error("failed to open record source", "kind", cfg.Source.Kind, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	sub, err := src.Subscribe(ctx, browser.OnSnapshot)
	if err != nil {
		slog.Error("failed to subscribe to record source", "source", src.Name(), "error", err)
		os.Exit(1)
	}

	sink, err := export.Open(cfg.Export)
	if err != nil {
		slog.Error("failed to configure export sink", "kind", cfg.Export.Kind, "error", err)
		os.Exit(1)
	}

	server := web.NewServer(browser, sink, cfg)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		// No snapshot may reach the browser once we start tearing down.
		sub.Unsubscribe()
		browser.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		stop()
		sub.Unsubscribe()
		return
	}
	slog.Info("server stopped")
}

// openPool connects a pgx pool sized from cfg and verifies it.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
