package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/duck-rage/duck-rage/internal/api"
	"github.com/duck-rage/duck-rage/internal/audit"
	"github.com/duck-rage/duck-rage/internal/exec"
	"github.com/duck-rage/duck-rage/internal/provision"
	"github.com/duck-rage/duck-rage/internal/registry"
	"github.com/duck-rage/duck-rage/pkg/config"
	"github.com/duck-rage/duck-rage/pkg/logger"
	"github.com/duck-rage/duck-rage/pkg/sqlmask"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the provisioning service with its HTTP API",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [duck-rage]...")
	logg.Info("host connection DSN: ", sqlmask.MaskDSN(cfg.HostDSN))

	// --- Host connection (registration statements run here) ---
	host, err := openHost(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to open host connection", "error", err)
	}
	exec.SetShared(host.executor)

	// --- Audit publisher (optional) ---
	var auditor provision.Auditor
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		pub, err := audit.New(nc, cfg.AuditSubject, cfg.ServiceName)
		if err != nil {
			logg.Fatalw("failed to init audit publisher", "error", err)
		}
		defer pub.Close()
		auditor = pub
	} else {
		logg.Warn("NATS_URL not configured; audit events disabled")
	}

	// --- Operation registry ---
	reg := registry.New()
	fn := provision.New(host.executor, logger.L(), auditor)
	if err := reg.Register(fn); err != nil {
		logg.Fatalw("failed to register table function", "function", fn.Name(), "error", err)
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewFunctionHandler(logger.L(), reg)
	api.RegisterRoutes(app, handler, host.pinger)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[duck-rage] running",
		"env", cfg.Env,
		"host_driver", cfg.HostDriver,
		"functions", reg.Names(),
	)

	<-ctx.Done()
	logg.Info("shutting down [duck-rage]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := host.close(); err != nil {
		logg.Warnw("host.close_failed", "error", err)
	}
	return nil
}
