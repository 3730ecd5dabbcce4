package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"bitrate-lab/internal/config"
	"bitrate-lab/internal/logging"
	"bitrate-lab/internal/storage"
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
		logger.Error("api stopped", slog.Any("error", err))
	}
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if !cfg.StorageEnabled() {
		return errors.New("api requires storage.bucket or S3_BUCKET_NAME")
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Queue.RedisAddr})
	defer asynqClient.Close()

	s3Client, err := storage.NewS3Client(context.Background(), cfg.Storage.Bucket, cfg.Storage.Endpoint, cfg.Storage.Region)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}

	api := &API{
		Store:  s3Client,
		Queue:  asynqClient,
		Config: cfg,
		Logger: logger,
	}

	router := newRouter(api, cfg.API.AllowOrigins)
	logger.Info("api listening", slog.String("bind", cfg.API.Bind))
	return router.Run(cfg.API.Bind)
}

func newRouter(api *API, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Version 1
	v1 := router.Group("/v1")
	{
		v1.POST("/uploads", api.handleCreateUpload)
		v1.POST("/jobs/sweep", api.handleCreateSweepJob)

		v1.GET("/sweeps/:sweepId", api.handleGetSweep)
		v1.GET("/sweeps/:sweepId/charts/:kind", api.handleGetChart)
	}
	return router
}
