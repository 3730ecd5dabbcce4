package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitrate-lab/pkg/models"
)

func sampleSeries(kind models.MediaKind) models.Series {
	return models.Series{
		Kind: kind,
		Points: []models.Point{
			{Kbps: 320, SizeMB: 1.9, Quality: 95},
			{Kbps: 128, SizeMB: 0.76, Quality: 60},
			{Kbps: 64, SizeMB: 0.38, Quality: 20},
		},
	}
}

func TestRenderWritesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", FileName(models.MediaAudio))
	require.NoError(t, Render(sampleSeries(models.MediaAudio), path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "expected a PDF header")
}

func TestRenderSVGByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.svg")
	require.NoError(t, Render(sampleSeries(models.MediaVideo), path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestRenderEmptySeries(t *testing.T) {
	err := Render(models.Series{Kind: models.MediaVideo}, filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(sampleSeries(models.MediaVideo), filepath.Join(t.TempDir(), "x.doc"))
	require.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "video_quality_analysis.pdf", FileName(models.MediaVideo))
	assert.Equal(t, "audio_quality_analysis.pdf", FileName(models.MediaAudio))
}
