package main

import (
	"context"
	"os"
	"time"

	"finzen/internal/amqp"
	"finzen/internal/backend"
	"finzen/internal/cli"
	"finzen/internal/log"
	"finzen/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting finzen")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid source configuration", log.FieldError, err)
		return cli.ExitBadConfig
	}
	source, err := backend.NewFactory(logger).CreateSource(ctx, sourceCfg)
	if err != nil {
		logger.Error("Failed to initialize survey source", log.FieldError, err, log.FieldSource, cfg.InputSource)
		return cli.ExitFailure
	}
	if source.Cleanup != nil {
		defer source.Cleanup()
	}

	var opts []pipeline.RunnerOption

	if cfg.SQLiteDBPath != "" {
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		opts = append(opts, pipeline.WithStore(repo))
		logger.Info("Run persistence enabled", log.FieldPath, cfg.SQLiteDBPath)
	} else {
		logger.Info("Run persistence disabled - no SQLITE_DB_PATH provided")
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.PublishTimeout)
		if err != nil {
			// The run itself does not depend on the broker.
			logger.Warn("AMQP unavailable, run events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, pipeline.WithPublisher(client))
			logger.Info("Run events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	runner := pipeline.NewRunner(source.Reader, pipeline.OptionsFromConfig(cfg), logger, opts...)

	started := time.Now()
	res, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() == context.Canceled {
			logger.Warn("Run interrupted", log.FieldError, err)
		} else {
			logger.Error("Run failed", log.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	logger.Info("Outputs written",
		log.FieldRunID, res.Summary.RunID,
		"output_dir", cfg.OutputDir,
		"files", len(res.Files),
		log.FieldDuration, time.Since(started).Milliseconds())
	return cli.ExitOK
}
