package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"bitrate-lab/internal/config"
	"bitrate-lab/internal/deps"
	"bitrate-lab/internal/logging"
	"bitrate-lab/internal/media"
	"bitrate-lab/internal/storage"
	"bitrate-lab/internal/worker"
	"bitrate-lab/pkg/models"
)

func main() {
	cfg, _, _, err := config.Load(os.Getenv("BITRATE_LAB_CONFIG"))
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	logger, closeLog, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}
	err = run(cfg, logger)
	if err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
	}
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if !cfg.StorageEnabled() {
		return fmt.Errorf("worker requires storage.bucket or S3_BUCKET_NAME")
	}
	if err := deps.FirstMissing(deps.CheckBinaries(deps.SweepRequirements(cfg.FFmpeg.Binary))); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage.Bucket, cfg.Storage.Endpoint, cfg.Storage.Region)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}

	processor := worker.NewTaskProcessor(s3Client, cfg, media.NewExecRunner(cfg.FFmpeg.Binary), logger)

	asynqServer := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.Queue.RedisAddr}, asynq.Config{
		// Each task sweeps in its own temp dir.
		Concurrency: cfg.Queue.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(models.TaskBitrateSweep, processor.HandleSweepTask)

	logger.Info("worker listening", slog.String("redis", cfg.Queue.RedisAddr), slog.Int("concurrency", cfg.Queue.Concurrency))
	if err := asynqServer.Start(mux); err != nil {
		return fmt.Errorf("could not run server: %w", err)
	}
	<-ctx.Done()
	asynqServer.Shutdown()
	return nil
}
