package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bitrate-lab/internal/chart"
	"bitrate-lab/internal/config"
	"bitrate-lab/internal/media"
	"bitrate-lab/internal/report"
	"bitrate-lab/pkg/models"
)

// Step is reported to the progress callback after every unit of work.
type Step struct {
	Stage string
	Done  int
	Total int
}

// ChartRenderer writes the chart for a series to path.
type ChartRenderer func(series models.Series, path string) error

// SweepPipeline encodes the input at every rung of the video ladder,
// extracts its audio, encodes that at every rung of the audio ladder, and
// charts both series. Work runs sequentially in that order.
type SweepPipeline struct {
	ID string

	Input          string
	OutputDir      string
	ReportDir      string
	ExtractedAudio string

	VideoLadder Ladder
	AudioLadder Ladder
	VideoFormat string
	AudioFormat string
	SkipVideo   bool
	SkipAudio   bool

	Runner   media.Runner
	Probe    media.Prober
	Charts   ChartRenderer
	Logger   *slog.Logger
	Progress func(Step)

	done  int
	total int
	// duration of the input in seconds, when probing succeeded.
	duration float64
}

// ErrAudioOverwritesInput is returned when the extracted audio would
// replace the input file.
var ErrAudioOverwritesInput = errors.New("extracted audio path is the input file")

// NewSweepPipeline builds a pipeline from configuration.
func NewSweepPipeline(cfg *config.Config, runner media.Runner, logger *slog.Logger) (*SweepPipeline, error) {
	video, err := NewLadder(cfg.Video.Bitrates, cfg.Video.Qualities)
	if err != nil {
		return nil, fmt.Errorf("video ladder: %w", err)
	}
	audio, err := NewLadder(cfg.Audio.Bitrates, cfg.Audio.Qualities)
	if err != nil {
		return nil, fmt.Errorf("audio ladder: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepPipeline{
		ID:             uuid.NewString(),
		Input:          cfg.Paths.Input,
		OutputDir:      cfg.Paths.OutputDir,
		ReportDir:      cfg.Paths.ReportDir,
		ExtractedAudio: cfg.Paths.ExtractedAudio,
		VideoLadder:    video,
		AudioLadder:    audio,
		VideoFormat:    cfg.Video.Format,
		AudioFormat:    cfg.Audio.Format,
		Runner:         runner,
		Probe:          media.NewProber(cfg.ProbeTimeout()),
		Charts:         chart.Render,
		Logger:         logger,
	}, nil
}

// VideoOutputPath returns where the rendition for kbps is written.
func (p *SweepPipeline) VideoOutputPath(kbps int) string {
	return filepath.Join(p.OutputDir, "bitrate_video_"+strconv.Itoa(kbps)+"_output."+p.videoFormat())
}

// AudioOutputPath returns where the audio rendition for kbps is written.
func (p *SweepPipeline) AudioOutputPath(kbps int) string {
	return filepath.Join(p.OutputDir, "bitrate_audio_"+strconv.Itoa(kbps)+"_output."+p.audioFormat())
}

// ExtractedAudioPath defaults to the input path with an .mp3 extension,
// or "<stem>_extracted.mp3" when the input already is an MP3.
func (p *SweepPipeline) ExtractedAudioPath() string {
	if p.ExtractedAudio != "" {
		return p.ExtractedAudio
	}
	ext := filepath.Ext(p.Input)
	stem := strings.TrimSuffix(p.Input, ext)
	if strings.EqualFold(ext, ".mp3") {
		return stem + "_extracted.mp3"
	}
	return stem + ".mp3"
}

// ChartPath returns the chart location for a media kind.
func (p *SweepPipeline) ChartPath(kind models.MediaKind) string {
	return filepath.Join(p.reportDir(), chart.FileName(kind))
}

// ReportPath returns the location of the JSON report.
func (p *SweepPipeline) ReportPath() string {
	return filepath.Join(p.reportDir(), report.FileName)
}

// Run executes the whole sweep and writes the report.
func (p *SweepPipeline) Run(ctx context.Context) (*models.Report, error) {
	if p.Runner == nil {
		return nil, errors.New("sweep: no ffmpeg runner")
	}
	if _, err := os.Stat(p.Input); err != nil {
		return nil, fmt.Errorf("sweep input: %w", err)
	}

	unlock, err := lockDir(p.OutputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			p.log().Warn("failed to release output lock", slog.Any("error", err))
		}
	}()

	if err := os.MkdirAll(p.reportDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	p.log().Info("Stage: Probing...", slog.String("input", p.Input))
	hasAudio := p.probe()
	runAudio := !p.SkipAudio && hasAudio

	p.done = 0
	p.total = p.plannedSteps(runAudio)

	rep := &models.Report{
		ID:              p.ID,
		Input:           p.Input,
		DurationSeconds: p.duration,
		CreatedAt:       time.Now().UTC(),
		Charts:          map[models.MediaKind]string{},
	}

	if !p.SkipVideo {
		series, err := p.Video(ctx)
		if err != nil {
			return nil, err
		}
		rep.Video = &series
		if err := p.chart(series, rep); err != nil {
			return nil, err
		}
	}

	if runAudio {
		audioPath, err := p.ExtractAudio(ctx)
		if err != nil {
			return nil, err
		}
		series, err := p.Audio(ctx, audioPath)
		if err != nil {
			return nil, err
		}
		rep.Audio = &series
		if err := p.chart(series, rep); err != nil {
			return nil, err
		}
	}

	if err := report.WriteJSON(rep, p.ReportPath()); err != nil {
		return nil, err
	}
	p.log().Info("sweep finished", slog.String("id", p.ID), slog.String("report", p.ReportPath()))
	return rep, nil
}

// Video encodes the input at every video rung and measures the results.
func (p *SweepPipeline) Video(ctx context.Context) (models.Series, error) {
	p.log().Info("Stage: Encoding video...", slog.Int("renditions", len(p.VideoLadder)))
	series := models.Series{Kind: models.MediaVideo, Source: p.Input}
	for _, rung := range p.VideoLadder {
		if err := ctx.Err(); err != nil {
			return series, err
		}
		out := p.VideoOutputPath(rung.Kbps)
		bitrate := media.BitrateArg(rung.Kbps)
		if err := p.Runner.Run(ctx, media.VideoTranscode(p.Input, out, bitrate, p.videoFormat())); err != nil {
			return series, fmt.Errorf("encode video at %s: %w", bitrate, err)
		}
		p.log().Info("video saved", slog.String("path", out), slog.String("bitrate", bitrate))
		series.Points = append(series.Points, p.measure(rung, out))
		p.step("video " + bitrate)
	}
	p.log().Info("video sizes (MB)", slog.Any("sizes", series.Sizes()))
	return series, nil
}

// ExtractAudio writes the audio track of the input to ExtractedAudioPath.
func (p *SweepPipeline) ExtractAudio(ctx context.Context) (string, error) {
	out := p.ExtractedAudioPath()
	if filepath.Clean(out) == filepath.Clean(p.Input) {
		return "", fmt.Errorf("%w: %s", ErrAudioOverwritesInput, out)
	}
	p.log().Info("Stage: Extracting audio...", slog.String("path", out))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	if err := p.Runner.Run(ctx, media.ExtractAudio(p.Input, out)); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	p.step("extract audio")
	return out, nil
}

// Audio encodes source at every audio rung and measures the results.
func (p *SweepPipeline) Audio(ctx context.Context, source string) (models.Series, error) {
	p.log().Info("Stage: Encoding audio...", slog.Int("renditions", len(p.AudioLadder)))
	series := models.Series{Kind: models.MediaAudio, Source: source}
	for _, rung := range p.AudioLadder {
		if err := ctx.Err(); err != nil {
			return series, err
		}
		out := p.AudioOutputPath(rung.Kbps)
		bitrate := media.BitrateArg(rung.Kbps)
		if err := p.Runner.Run(ctx, media.AudioTranscode(source, out, bitrate, p.audioFormat())); err != nil {
			return series, fmt.Errorf("encode audio at %s: %w", bitrate, err)
		}
		p.log().Info("audio saved", slog.String("path", out), slog.String("bitrate", bitrate))
		series.Points = append(series.Points, p.measure(rung, out))
		p.step("audio " + bitrate)
	}
	p.log().Info("audio sizes (MB)", slog.Any("sizes", series.Sizes()))
	return series, nil
}

func (p *SweepPipeline) measure(rung Rung, path string) models.Point {
	size := SizeOrZero(p.log(), path)
	point := models.Point{Kbps: rung.Kbps, SizeMB: size, Quality: rung.Quality, Path: path}
	if p.duration > 0 && size > 0 {
		point.MeasuredKbps = size * bytesPerMB * 8 / 1000 / p.duration
	}
	return point
}

func (p *SweepPipeline) chart(series models.Series, rep *models.Report) error {
	path := p.ChartPath(series.Kind)
	p.log().Info("Stage: Charting...", slog.String("kind", string(series.Kind)), slog.String("path", path))
	render := p.Charts
	if render == nil {
		render = chart.Render
	}
	if err := render(series, path); err != nil {
		return fmt.Errorf("%s chart: %w", series.Kind, err)
	}
	rep.Charts[series.Kind] = filepath.Base(path)
	p.step(string(series.Kind) + " chart")
	return nil
}

// probe records the input duration and reports whether the input may have
// audio. Probe failures are not fatal and count as "may have audio".
func (p *SweepPipeline) probe() bool {
	p.duration = 0
	if p.Probe == nil {
		return true
	}
	result, err := p.Probe(p.Input)
	if err != nil {
		p.log().Warn("probe failed, continuing without stream info", slog.Any("error", err))
		return true
	}
	p.duration = result.DurationSeconds()
	if !result.HasAudio() {
		p.log().Warn("input has no audio stream, skipping audio sweep", slog.String("input", p.Input))
		return false
	}
	return true
}

func (p *SweepPipeline) plannedSteps(audio bool) int {
	total := 0
	if !p.SkipVideo {
		total += len(p.VideoLadder) + 1
	}
	if audio {
		total += 1 + len(p.AudioLadder) + 1
	}
	return total
}

func (p *SweepPipeline) step(stage string) {
	p.done++
	if p.Progress != nil {
		p.Progress(Step{Stage: stage, Done: p.done, Total: p.total})
	}
}

// TotalSteps reports the number of progress steps Run will emit, assuming
// probing does not drop the audio half.
func (p *SweepPipeline) TotalSteps() int {
	return p.plannedSteps(!p.SkipAudio)
}

func (p *SweepPipeline) log() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *SweepPipeline) reportDir() string {
	if p.ReportDir != "" {
		return p.ReportDir
	}
	return p.OutputDir
}

func (p *SweepPipeline) videoFormat() string {
	if p.VideoFormat == "" {
		return "mp4"
	}
	return p.VideoFormat
}

func (p *SweepPipeline) audioFormat() string {
	if p.AudioFormat == "" {
		return "mp3"
	}
	return p.AudioFormat
}
