package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitrate-lab/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("S3_BUCKET_NAME", "")

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NotEmpty(t, resolved)

	assert.Equal(t, []int{500, 1500, 2000, 3000, 4000, 5000}, cfg.Video.Bitrates)
	assert.Equal(t, []float64{30, 50, 70, 85, 90, 95}, cfg.Video.Qualities)
	assert.Equal(t, []int{320, 256, 192, 160, 128, 96, 64}, cfg.Audio.Bitrates)
	assert.Equal(t, "mp4", cfg.Video.Format)
	assert.Equal(t, "mp3", cfg.Audio.Format)
	assert.True(t, filepath.IsAbs(cfg.Paths.Input))
	assert.Equal(t, filepath.Join("inputs", "input.mp4"), relTo(t, dir, cfg.Paths.Input))
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadReadsProjectFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BITRATE_LAB_AUDIO_BITRATES", "128, 64")
	t.Setenv("S3_BUCKET_NAME", "sweeps")

	content := `
[paths]
input = "clips/sample.mp4"
output_dir = "out"

[audio]
qualities = [70, 30]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bitrate-lab.toml"), []byte(content), 0o644))

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "bitrate-lab.toml", filepath.Base(resolved))
	assert.Equal(t, filepath.Join("clips", "sample.mp4"), relTo(t, dir, cfg.Paths.Input))
	assert.Equal(t, "out", relTo(t, dir, cfg.Paths.OutputDir))
	assert.Equal(t, []int{128, 64}, cfg.Audio.Bitrates)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoadEnvOverridesLadderLength(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BITRATE_LAB_VIDEO_BITRATES", "800,2500")
	t.Setenv("BITRATE_LAB_VIDEO_QUALITIES", "40, 87.5")
	t.Setenv("BITRATE_LAB_AUDIO_BITRATES", "96")
	t.Setenv("BITRATE_LAB_AUDIO_QUALITIES", "35")

	cfg, _, _, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []int{800, 2500}, cfg.Video.Bitrates)
	assert.Equal(t, []float64{40, 87.5}, cfg.Video.Qualities)
	assert.Equal(t, []int{96}, cfg.Audio.Bitrates)
	assert.Equal(t, []float64{35}, cfg.Audio.Qualities)
}

func TestLoadRejectsBadQualityEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BITRATE_LAB_VIDEO_QUALITIES", "high,low")

	_, _, _, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BITRATE_LAB_VIDEO_QUALITIES")
}

func TestLoadRejectsMismatchedLadder(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[video]\nbitrates = [100, 200]\nqualities = [10]\n"), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video.bitrates and video.qualities")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[video]\nbitrate = [100]\n"), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "empty bitrates", mutate: func(c *config.Config) { c.Audio.Bitrates = nil; c.Audio.Qualities = nil }, wantErr: "audio.bitrates must not be empty"},
		{name: "negative bitrate", mutate: func(c *config.Config) { c.Video.Bitrates[0] = -1 }, wantErr: "positive kbps"},
		{name: "quality out of range", mutate: func(c *config.Config) { c.Video.Qualities[0] = 101 }, wantErr: "outside 0-100"},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "no input", mutate: func(c *config.Config) { c.Paths.Input = "" }, wantErr: "paths.input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "nested", "config.toml")
	require.NoError(t, config.CreateSample(path))

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, config.Default().Audio.Qualities, cfg.Audio.Qualities)
}

func relTo(t *testing.T, base, target string) string {
	t.Helper()
	// t.TempDir may sit behind a symlink (macOS /var -> /private/var).
	resolvedBase, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)
	rel, err := filepath.Rel(resolvedBase, target)
	if err == nil && !filepath.IsAbs(rel) && rel[0] != '.' {
		return rel
	}
	rel, err = filepath.Rel(base, target)
	require.NoError(t, err)
	return rel
}
