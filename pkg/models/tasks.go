package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TaskBitrateSweep = "task:bitrate_sweep"
)

// SweepPayload describes a sweep queued through the API. SourceKey is an
// object key in the configured bucket; empty ladders fall back to the
// worker's configuration.
type SweepPayload struct {
	SweepID       string    `json:"sweep_id"`
	SourceKey     string    `json:"source_key" binding:"required"`
	VideoBitrates []int     `json:"video_bitrates,omitempty"`
	VideoQuality  []float64 `json:"video_qualities,omitempty"`
	AudioBitrates []int     `json:"audio_bitrates,omitempty"`
	AudioQuality  []float64 `json:"audio_qualities,omitempty"`
	SkipVideo     bool      `json:"skip_video,omitempty"`
	SkipAudio     bool      `json:"skip_audio,omitempty"`
}

func NewSweepTask(data SweepPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBitrateSweep, payload), nil
}

// ParseSweepTask decodes the payload of a task created by NewSweepTask.
func ParseSweepTask(t *asynq.Task) (SweepPayload, error) {
	var p SweepPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

var ErrInvalidSweepID = errors.New("sweep id must be a UUID")

// NormalizeSweepID returns id in canonical UUID form. Sweep IDs become
// object key segments and directory names, so anything else is refused.
func NormalizeSweepID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSweepID, id)
	}
	return parsed.String(), nil
}
