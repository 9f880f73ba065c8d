package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"churchadmin/internal/app"
	"churchadmin/internal/config"
	"churchadmin/internal/database"
	"churchadmin/internal/logging"
	"churchadmin/internal/seed"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	slog.Info("migrations completed successfully")

	a, err := app.New(ctx, cfg, db, app.Options{Version: version, Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer a.Close()

	if res, err := a.SeedOnce(ctx); err != nil {
		slog.Warn("failed to apply seed data", "path", cfg.SeedPath, "error", err)
	} else if res != (seed.Result{}) {
		slog.Info("seed data applied", "members", res.Members, "presets", res.Presets, "events", res.Events)
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Websocket connections set their own deadlines after the upgrade.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })
	g.Go(func() error {
		slog.Info("server starting", "addr", "http://localhost"+server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
