package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitrate-lab/internal/config"
	"bitrate-lab/internal/logging"
	"bitrate-lab/internal/media"
	"bitrate-lab/internal/report"
	"bitrate-lab/pkg/models"
)

func newTestPipeline(t *testing.T, runner media.Runner) *SweepPipeline {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "inputs", "input.mp4")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0o755))
	require.NoError(t, os.WriteFile(input, []byte("source"), 0o644))

	cfg := config.Default()
	cfg.Paths.Input = input
	cfg.Paths.OutputDir = filepath.Join(dir, "outputs")
	cfg.Paths.ReportDir = filepath.Join(dir, "reports")

	p, err := NewSweepPipeline(&cfg, runner, logging.NewNop())
	require.NoError(t, err)
	p.Probe = nil
	return p
}

func TestRunFullSweep(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)

	var steps []Step
	p.Progress = func(s Step) { steps = append(steps, s) }

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	// 6 video encodes, 1 extraction, 7 audio encodes, in that order.
	kinds := runner.kinds()
	require.Len(t, kinds, 14)
	for i := 0; i < 6; i++ {
		assert.Equal(t, media.KindVideoTranscode, kinds[i])
	}
	assert.Equal(t, media.KindAudioExtract, kinds[6])
	for i := 7; i < 14; i++ {
		assert.Equal(t, media.KindAudioTranscode, kinds[i])
	}

	require.NotNil(t, rep.Video)
	require.NotNil(t, rep.Audio)
	assert.Equal(t, []int{500, 1500, 2000, 3000, 4000, 5000}, rep.Video.Bitrates())
	assert.Equal(t, []int{320, 256, 192, 160, 128, 96, 64}, rep.Audio.Bitrates())
	assert.InDelta(t, 500*100.0/(1024*1024), rep.Video.Points[0].SizeMB, 1e-12)
	assert.Equal(t, p.VideoOutputPath(500), rep.Video.Points[0].Path)
	assert.Equal(t, "bitrate_video_500_output.mp4", filepath.Base(p.VideoOutputPath(500)))
	assert.Equal(t, "bitrate_audio_64_output.mp3", filepath.Base(p.AudioOutputPath(64)))

	// Audio is encoded from the extracted track, which sits next to the input.
	assert.Equal(t, filepath.Join(filepath.Dir(p.Input), "input.mp3"), rep.Audio.Source)
	assert.FileExists(t, rep.Audio.Source)

	assert.FileExists(t, p.ChartPath(models.MediaVideo))
	assert.FileExists(t, p.ChartPath(models.MediaAudio))
	assert.Equal(t, "video_quality_analysis.pdf", rep.Charts[models.MediaVideo])

	saved, err := report.ReadJSON(p.ReportPath())
	require.NoError(t, err)
	assert.Equal(t, rep.ID, saved.ID)

	require.Len(t, steps, 16)
	assert.Equal(t, 16, steps[len(steps)-1].Total)
	assert.Equal(t, 16, steps[len(steps)-1].Done)
}

func TestRunSkipsAudioWithoutAudioStream(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)
	p.Probe = func(string) (media.ProbeResult, error) {
		return media.ParseProbe([]byte(`{"streams":[{"codec_type":"video"}],"format":{"duration":"10"}}`))
	}

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rep.Audio)
	assert.Len(t, runner.kinds(), 6)
	assert.Equal(t, 10.0, rep.DurationSeconds)
	// 500 kbps * 100 bytes over 10 s
	assert.InDelta(t, 500*100*8/1000.0/10, rep.Video.Points[0].MeasuredKbps, 1e-9)
}

func TestRunProbesEachInputAgain(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)
	p.SkipVideo = true
	hasAudio := false
	p.Probe = func(string) (media.ProbeResult, error) {
		if hasAudio {
			return media.ParseProbe([]byte(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"4"}}`))
		}
		return media.ParseProbe([]byte(`{"streams":[{"codec_type":"video"}],"format":{"duration":"10"}}`))
	}

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rep.Audio)
	assert.False(t, p.SkipAudio)

	hasAudio = true
	rep, err = p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rep.Audio)
	assert.Len(t, rep.Audio.Points, 7)
	assert.Equal(t, 4.0, rep.DurationSeconds)
}

func TestRunContinuesWhenProbeFails(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)
	p.SkipVideo = true
	p.Probe = func(string) (media.ProbeResult, error) { return media.ProbeResult{}, errors.New("ffprobe missing") }

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rep.Video)
	require.NotNil(t, rep.Audio)
	assert.Len(t, rep.Audio.Points, 7)
}

func TestRunStopsOnEncodeFailure(t *testing.T) {
	runner := &fakeRunner{failOn: "2000k"}
	p := newTestPipeline(t, runner)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	var execErr *media.ExecError
	assert.True(t, errors.As(err, &execErr))
	assert.Contains(t, err.Error(), "encode video at 2000k")
	assert.Len(t, runner.kinds(), 3)
	assert.NoFileExists(t, p.ReportPath())
}

func TestRunHonorsCancellation(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.kinds())
}

func TestRunMissingInput(t *testing.T) {
	p := newTestPipeline(t, &fakeRunner{})
	p.Input = filepath.Join(t.TempDir(), "nope.mp4")
	_, err := p.Run(context.Background())
	require.Error(t, err)
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	p := newTestPipeline(t, &fakeRunner{})
	unlock, err := lockDir(p.OutputDir)
	require.NoError(t, err)
	defer unlock()

	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, ErrLocked)
}

func TestMissingRenditionCountsAsZero(t *testing.T) {
	p := newTestPipeline(t, &fakeRunner{})
	point := p.measure(Rung{Kbps: 96, Quality: 30}, filepath.Join(t.TempDir(), "gone.mp3"))
	assert.Zero(t, point.SizeMB)
	assert.Zero(t, point.MeasuredKbps)
	assert.Equal(t, 30.0, point.Quality)
}

func TestExtractedAudioPathOverride(t *testing.T) {
	p := newTestPipeline(t, &fakeRunner{})
	p.ExtractedAudio = "/tmp/custom.mp3"
	assert.Equal(t, "/tmp/custom.mp3", p.ExtractedAudioPath())
}

func TestExtractedAudioPathForMP3Input(t *testing.T) {
	p := newTestPipeline(t, &fakeRunner{})
	p.Input = filepath.Join("clips", "track.MP3")
	assert.Equal(t, filepath.Join("clips", "track_extracted.mp3"), p.ExtractedAudioPath())
}

func TestExtractAudioRefusesToOverwriteInput(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner)
	p.ExtractedAudio = p.Input

	_, err := p.ExtractAudio(context.Background())
	assert.ErrorIs(t, err, ErrAudioOverwritesInput)
	assert.Empty(t, runner.kinds())
}

func TestNewSweepPipelineRejectsBadLadder(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Qualities = cfg.Audio.Qualities[:2]
	_, err := NewSweepPipeline(&cfg, &fakeRunner{}, nil)
	assert.ErrorIs(t, err, ErrLadderMismatch)
}
