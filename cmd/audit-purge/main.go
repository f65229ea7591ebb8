// Command audit-purge runs one audit retention pass and exits. Meant
// for cron setups where the long-running server is not deployed.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"kassenbuch/internal/cli"
	"kassenbuch/internal/log"
	"kassenbuch/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentPurge)
	cfg := cli.LoadAndValidateConfig(logger)

	days := flag.Int("days", cfg.AuditRetentionDays, "retention window in days; events older than this are deleted")
	flag.Parse()

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	books := services.NewBookkeepingService(repo, nil, nil, nil)
	defer books.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := books.PurgeAudit(ctx, *days)
	if err != nil {
		logger.Error("Audit purge failed", log.FieldError, err, "retention_days", *days)
		os.Exit(1)
	}
	logger.Info("Audit purge complete", log.FieldDeleted, deleted, "retention_days", *days)
}
