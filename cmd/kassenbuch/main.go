package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kassenbuch/internal/amqp"
	"kassenbuch/internal/cli"
	apphttp "kassenbuch/internal/http"
	"kassenbuch/internal/log"
	"kassenbuch/internal/services"

	exportsvc "kassenbuch/internal/export"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, audit events stay local only", log.FieldError, err)
		} else {
			amqpClient = client
			logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	books := services.NewBookkeepingService(repo, amqpClient, nil, nil)
	exporter := exportsvc.NewService(books, logger.WithComponent(log.ComponentExport).Logger)
	srv := apphttp.NewServer(":"+cfg.Port, books, exporter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runPurgeLoop(gctx, logger.WithComponent(log.ComponentPurge), books, cfg.AuditRetentionDays, cfg.PurgeInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		_ = books.Close()
		os.Exit(1)
	}

	if err := books.Close(); err != nil {
		logger.Warn("Cleanup error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}

// runPurgeLoop trims the audit log on a fixed interval until the
// context is cancelled. One pass runs at startup so a long-stopped
// instance catches up immediately.
func runPurgeLoop(ctx context.Context, logger *log.Logger, books *services.BookkeepingService, retentionDays int, interval time.Duration) {
	purge := func() {
		deleted, err := books.PurgeAudit(ctx, retentionDays)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Audit purge failed", log.FieldError, err)
			}
			return
		}
		if deleted > 0 {
			logger.Info("Purged audit events", log.FieldDeleted, deleted, "retention_days", retentionDays)
		}
	}

	purge()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
