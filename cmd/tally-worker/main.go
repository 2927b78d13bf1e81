package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/export"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
	"tally/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting tally-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	exporter := export.NewExporter(services.NewReportService(store), cfg.ExportDir, logger)
	exportWorker := worker.NewExportWorker(exporter, cfg.ExportInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A fresh worker always leaves a current workbook behind before it
	// starts listening for changes.
	if err := exportWorker.StartupExport(ctx); err != nil {
		logger.Error("startup export failed", log.FieldError, err)
	}

	go func() {
		err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			func(msg *amqp.EntityChangeMessage) error {
				return exportWorker.HandleEntityChange(ctx, msg)
			})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	go func() {
		if err := exportWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("export loop failed", log.FieldError, err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	cancel()
	logger.Info("worker shutdown complete")
}
