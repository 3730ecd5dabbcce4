package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"bitrate-lab/internal/config"
	"bitrate-lab/internal/deps"
	"bitrate-lab/internal/media"
	"bitrate-lab/internal/report"
	"bitrate-lab/internal/storage"
	"bitrate-lab/internal/worker"
	"bitrate-lab/pkg/models"
)

type sweepMode int

const (
	sweepBoth sweepMode = iota
	sweepVideoOnly
	sweepAudioOnly
)

type runOptions struct {
	input      string
	outputDir  string
	reportDir  string
	upload     bool
	noProgress bool
	showFFmpeg bool
}

func newRunCommand(ctx *commandContext, mode sweepMode) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.logger()
			if err != nil {
				return err
			}
			defer closeLog()
			return runSweep(cmd.Context(), cmd, cfg, logger, mode, opts)
		},
	}
	switch mode {
	case sweepVideoOnly:
		cmd.Use = "video"
		cmd.Short = "Encode the input at every video bitrate and chart the results"
	case sweepAudioOnly:
		cmd.Use = "audio"
		cmd.Short = "Extract the audio track, encode it at every audio bitrate, and chart the results"
	default:
		cmd.Use = "run"
		cmd.Short = "Run the video sweep followed by the audio sweep"
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Input video (overrides paths.input)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for encoded renditions (overrides paths.output_dir)")
	flags.StringVar(&opts.reportDir, "report-dir", "", "Directory for charts and report.json (overrides paths.report_dir)")
	flags.BoolVar(&opts.upload, "upload", false, "Upload renditions, charts, and report to the configured bucket")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	flags.BoolVar(&opts.showFFmpeg, "show-ffmpeg", false, "Stream ffmpeg stderr to the terminal")
	return cmd
}

func runSweep(ctx context.Context, cmd *cobra.Command, base *config.Config, logger *slog.Logger, mode sweepMode, opts runOptions) error {
	cfg := *base
	if err := applyPathOverrides(&cfg, opts); err != nil {
		return err
	}
	if opts.upload && !cfg.StorageEnabled() {
		return fmt.Errorf("--upload requires storage.bucket or S3_BUCKET_NAME")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.SweepRequirements(cfg.FFmpeg.Binary))
	if err := deps.FirstMissing(statuses); err != nil {
		return err
	}

	runner := media.NewExecRunner(cfg.FFmpeg.Binary)
	if opts.showFFmpeg {
		runner.Stderr = cmd.ErrOrStderr()
	}

	pipeline, err := worker.NewSweepPipeline(&cfg, runner, logger)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if s.Name == "FFprobe" && !s.Available {
			logger.Warn("ffprobe not found, skipping stream inspection")
			pipeline.Probe = nil
		}
	}
	pipeline.SkipVideo = mode == sweepAudioOnly
	pipeline.SkipAudio = mode == sweepVideoOnly

	if !opts.noProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar := newProgressBar(pipeline.TotalSteps())
		pipeline.Progress = func(step worker.Step) {
			bar.ChangeMax(step.Total)
			bar.Describe(step.Stage)
			_ = bar.Add(1)
		}
		defer func() { _ = bar.Finish() }()
	}

	logger.Info("=== bitrate sweep ===", slog.String("id", pipeline.ID))
	logger.Info("In:  " + cfg.Paths.Input)
	logger.Info("Out: " + cfg.Paths.OutputDir)

	rep, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Summary(rep))
	for kind, name := range rep.Charts {
		logger.Info("chart written", slog.String("kind", string(kind)), slog.String("path", pipeline.ChartPath(kind)), slog.String("name", name))
	}

	if opts.upload {
		return uploadReport(ctx, &cfg, pipeline, rep, logger)
	}
	return nil
}

func applyPathOverrides(cfg *config.Config, opts runOptions) error {
	overrides := []struct {
		value  string
		target *string
	}{
		{opts.input, &cfg.Paths.Input},
		{opts.outputDir, &cfg.Paths.OutputDir},
		{opts.reportDir, &cfg.Paths.ReportDir},
	}
	for _, o := range overrides {
		if strings.TrimSpace(o.value) == "" {
			continue
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(o.value))
		if err != nil {
			return err
		}
		*o.target = expanded
	}
	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("sweeping"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// uploadReport pushes exactly the files this sweep produced; the report
// directory may be shared with unrelated files.
func uploadReport(ctx context.Context, cfg *config.Config, pipeline *worker.SweepPipeline, rep *models.Report, logger *slog.Logger) error {
	client, err := storage.NewS3Client(ctx, cfg.Storage.Bucket, cfg.Storage.Endpoint, cfg.Storage.Region)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}
	prefix := storage.Key(cfg.Storage.Prefix, rep.ID)

	files := map[string]string{pipeline.ReportPath(): storage.Key(prefix, report.FileName)}
	for kind := range rep.Charts {
		path := pipeline.ChartPath(kind)
		files[path] = storage.Key(prefix, filepath.Base(path))
	}
	for _, series := range []*models.Series{rep.Video, rep.Audio} {
		if series == nil {
			continue
		}
		for _, p := range series.Points {
			if p.SizeMB == 0 {
				continue
			}
			files[p.Path] = storage.Key(prefix, "outputs", filepath.Base(p.Path))
		}
	}

	for local, key := range files {
		if err := client.UploadFile(ctx, local, key); err != nil {
			return err
		}
		logger.Debug("uploaded", slog.String("key", key))
	}
	logger.Info("sweep uploaded", slog.String("bucket", cfg.Storage.Bucket), slog.String("prefix", prefix), slog.Int("objects", len(files)))
	return nil
}
