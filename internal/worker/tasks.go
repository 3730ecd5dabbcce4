package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"bitrate-lab/internal/config"
	"bitrate-lab/internal/media"
	"bitrate-lab/internal/storage"
	"bitrate-lab/pkg/models"
)

// ObjectStore is the subset of storage.S3Client the task processor needs.
type ObjectStore interface {
	DownloadFile(ctx context.Context, objectKey, localPath string) error
	UploadDir(ctx context.Context, dir, prefix string) ([]string, error)
}

// TaskProcessor carries the dependencies shared by every queued sweep so
// the asynq handler doesn't have to build them per task.
type TaskProcessor struct {
	Store  ObjectStore
	Config *config.Config
	Runner media.Runner
	Logger *slog.Logger
	// Prober is optional; nil skips stream inspection.
	Prober media.Prober
}

func NewTaskProcessor(store ObjectStore, cfg *config.Config, runner media.Runner, logger *slog.Logger) *TaskProcessor {
	return &TaskProcessor{
		Store:  store,
		Config: cfg,
		Runner: runner,
		Logger: logger,
		Prober: media.NewProber(cfg.ProbeTimeout()),
	}
}

// HandleSweepTask downloads the source object, sweeps it in a scratch
// directory, and uploads outputs, charts, and report under the sweep ID.
func (tp *TaskProcessor) HandleSweepTask(ctx context.Context, t *asynq.Task) error {
	payload, err := models.ParseSweepTask(t)
	if err != nil {
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.SweepID == "" {
		payload.SweepID = uuid.NewString()
	}
	id, err := models.NormalizeSweepID(payload.SweepID)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	payload.SweepID = id
	logger := tp.Logger.With(slog.String("sweep_id", payload.SweepID))
	logger.Info("starting sweep", slog.String("source", payload.SourceKey))

	if err := tp.process(ctx, payload, logger); err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		return err
	}
	return nil
}

func (tp *TaskProcessor) process(ctx context.Context, payload models.SweepPayload, logger *slog.Logger) error {
	if payload.SourceKey == "" {
		return fmt.Errorf("sweep %s: empty source_key: %w", payload.SweepID, asynq.SkipRetry)
	}

	tempDir, err := os.MkdirTemp("", "bitrate-lab-*-"+payload.SweepID)
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := *tp.Config
	cfg.Paths.Input = filepath.Join(tempDir, "source", filepath.Base(payload.SourceKey))
	cfg.Paths.OutputDir = filepath.Join(tempDir, "outputs")
	cfg.Paths.ReportDir = filepath.Join(tempDir, "report")
	cfg.Paths.ExtractedAudio = ""
	if len(payload.VideoBitrates) > 0 {
		cfg.Video.Bitrates, cfg.Video.Qualities = payload.VideoBitrates, payload.VideoQuality
	}
	if len(payload.AudioBitrates) > 0 {
		cfg.Audio.Bitrates, cfg.Audio.Qualities = payload.AudioBitrates, payload.AudioQuality
	}

	pipeline, err := NewSweepPipeline(&cfg, tp.Runner, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	pipeline.ID = payload.SweepID
	pipeline.Probe = tp.Prober
	pipeline.SkipVideo = payload.SkipVideo
	pipeline.SkipAudio = payload.SkipAudio

	logger.Info("Stage: Downloading source...", slog.String("key", payload.SourceKey))
	if err := tp.Store.DownloadFile(ctx, payload.SourceKey, cfg.Paths.Input); err != nil {
		return err
	}

	if _, err := pipeline.Run(ctx); err != nil {
		return err
	}

	prefix := storage.Key(cfg.Storage.Prefix, payload.SweepID)
	logger.Info("Stage: Uploading results...", slog.String("prefix", prefix))
	outputs, err := tp.Store.UploadDir(ctx, cfg.Paths.OutputDir, storage.Key(prefix, "outputs"))
	if err != nil {
		return err
	}
	reports, err := tp.Store.UploadDir(ctx, cfg.Paths.ReportDir, prefix)
	if err != nil {
		return err
	}
	logger.Info("sweep uploaded", slog.Int("objects", len(outputs)+len(reports)))
	return nil
}
