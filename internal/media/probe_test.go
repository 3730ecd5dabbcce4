package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "bit_rate": "128000"}
  ],
  "format": {"filename": "input.mp4", "duration": "12.480000", "size": "7340032", "bit_rate": "4705148", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseProbe(t *testing.T) {
	result, err := ParseProbe([]byte(sampleProbe))
	require.NoError(t, err)

	assert.True(t, result.HasVideo())
	assert.True(t, result.HasAudio())
	assert.InDelta(t, 12.48, result.DurationSeconds(), 1e-9)
	assert.InDelta(t, 4705.148, result.BitRateKbps(), 1e-9)
}

func TestParseProbeVideoOnly(t *testing.T) {
	result, err := ParseProbe([]byte(`{"streams":[{"codec_type":"video"}],"format":{"duration":"N/A"}}`))
	require.NoError(t, err)
	assert.False(t, result.HasAudio())
	assert.Zero(t, result.DurationSeconds())
	assert.Zero(t, result.BitRateKbps())
}

func TestParseProbeInvalid(t *testing.T) {
	_, err := ParseProbe([]byte("not json"))
	require.Error(t, err)
}

func TestProbeEmptyPath(t *testing.T) {
	_, err := Probe("  ", 0)
	require.Error(t, err)
}
