package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSweepID(t *testing.T) {
	id, err := NormalizeSweepID("0F8E3D6A-2C1B-4F7E-9D55-6A1B2C3D4E5F")
	require.NoError(t, err)
	assert.Equal(t, "0f8e3d6a-2c1b-4f7e-9d55-6a1b2c3d4e5f", id)

	for _, bad := range []string{"", "..", "team/a", "0f8e3d6a-2c1b"} {
		_, err := NormalizeSweepID(bad)
		assert.ErrorIs(t, err, ErrInvalidSweepID, bad)
	}
}

func TestSweepTaskRoundTrip(t *testing.T) {
	task, err := NewSweepTask(SweepPayload{SweepID: "abc", SourceKey: "abc/source/clip.mp4", SkipAudio: true})
	require.NoError(t, err)
	assert.Equal(t, TaskBitrateSweep, task.Type())

	payload, err := ParseSweepTask(task)
	require.NoError(t, err)
	assert.Equal(t, "abc/source/clip.mp4", payload.SourceKey)
	assert.True(t, payload.SkipAudio)
}
