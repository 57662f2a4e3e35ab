package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finzen/internal/amqp"
	"finzen/internal/backend"
	"finzen/internal/cli"
	"finzen/internal/log"
	"finzen/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting finzen-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		return cli.ExitBadConfig
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	var lookup worker.RunLookup
	if cfg.SQLiteDBPath != "" {
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		lookup = repo
	}

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return cli.ExitBadConfig
	}
	runLog, err := backend.NewFactory(logger).CreateRunLog(ctx, sourceCfg)
	if err != nil {
		logger.Error("Failed to initialize runs log", log.FieldError, err)
		return cli.ExitFailure
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.PublishTimeout)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return cli.ExitFailure
	}
	defer client.Close()

	w := worker.NewRunLogWorker(runLog, lookup)
	err = client.ConsumeRunCompleted(ctx, w.HandleRunCompleted)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		return cli.ExitFailure
	}

	// Give in-flight acknowledgements a moment before the connection closes.
	time.Sleep(500 * time.Millisecond)
	logger.Info("Worker shutdown complete")
	return cli.ExitOK
}
