package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeResult is the subset of ffprobe output a sweep cares about.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// ProbeStream describes a single stream in the container.
type ProbeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	BitRate   string `json:"bit_rate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

// ProbeFormat captures container-level metadata.
type ProbeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Prober inspects a media file.
type Prober func(path string) (ProbeResult, error)

// NewProber returns a Prober backed by ffprobe with the given timeout
// (zero disables the timeout).
func NewProber(timeout time.Duration) Prober {
	return func(path string) (ProbeResult, error) {
		return Probe(path, timeout)
	}
}

// Probe runs ffprobe against path and decodes its JSON report.
func Probe(path string, timeout time.Duration) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}
	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbe([]byte(out))
}

// ParseProbe decodes ffprobe's -of json output.
func ParseProbe(data []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// HasAudio reports whether at least one audio stream exists.
func (r ProbeResult) HasAudio() bool {
	return r.countType("audio") > 0
}

// HasVideo reports whether at least one video stream exists.
func (r ProbeResult) HasVideo() bool {
	return r.countType("video") > 0
}

func (r ProbeResult) countType(codecType string) int {
	count := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration, or 0 when unknown.
func (r ProbeResult) DurationSeconds() float64 {
	d := parseFloat(r.Format.Duration)
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// BitRateKbps returns the container bitrate in kbps, or 0 when unknown.
func (r ProbeResult) BitRateKbps() float64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return rate / 1000
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
