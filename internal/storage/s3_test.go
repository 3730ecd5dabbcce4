package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "sweeps/abc/report.json", Key("sweeps/", "/abc", "report.json"))
	assert.Equal(t, "abc/outputs/x.mp4", Key("", "abc", "outputs/x.mp4"))
	assert.Equal(t, "", Key("", "/"))
}

func TestUsePathStyle(t *testing.T) {
	assert.True(t, usePathStyle("http://localhost:9000"))
	assert.True(t, usePathStyle("http://minio:9000"))
	assert.False(t, usePathStyle("https://acct.r2.cloudflarestorage.com"))
	assert.False(t, usePathStyle(""))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("bitrate_video_500_output.mp4"))
	assert.Equal(t, "audio/mpeg", ContentType("a.MP3"))
	assert.Equal(t, "application/pdf", ContentType("video_quality_analysis.pdf"))
	assert.Equal(t, "application/octet-stream", ContentType("notes"))
}
