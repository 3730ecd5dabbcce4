package models

import "time"

// MediaKind distinguishes the two halves of a sweep.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Point is one encoded rendition.
type Point struct {
	Kbps    int     `json:"kbps"`
	SizeMB  float64 `json:"size_mb"`
	Quality float64 `json:"quality"`
	Path    string  `json:"path"`
	// MeasuredKbps is size*8/duration when the source duration is known.
	MeasuredKbps float64 `json:"measured_kbps,omitempty"`
}

// Series is the result of sweeping one ladder.
type Series struct {
	Kind   MediaKind `json:"kind"`
	Source string    `json:"source"`
	Points []Point   `json:"points"`
}

// Bitrates returns the x values of the series in ladder order.
func (s Series) Bitrates() []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Kbps
	}
	return out
}

// Sizes returns the measured sizes in MB in ladder order.
func (s Series) Sizes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.SizeMB
	}
	return out
}

// Qualities returns the subjective quality scores in ladder order.
func (s Series) Qualities() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Quality
	}
	return out
}

// Report collects everything one sweep produced.
type Report struct {
	ID              string               `json:"id"`
	Input           string               `json:"input"`
	DurationSeconds float64              `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Video           *Series              `json:"video,omitempty"`
	Audio           *Series              `json:"audio,omitempty"`
	Charts          map[MediaKind]string `json:"charts,omitempty"`
}
