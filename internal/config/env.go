package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// loadDotEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// applyEnv overlays BITRATE_LAB_* and the storage/queue variables shared
// with the API and worker.
func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("BITRATE_LAB_INPUT"); ok {
		c.Paths.Input = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_OUTPUT_DIR"); ok {
		c.Paths.OutputDir = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_REPORT_DIR"); ok {
		c.Paths.ReportDir = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_FFMPEG"); ok {
		c.FFmpeg.Binary = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv("BITRATE_LAB_VIDEO_BITRATES"); ok {
		bitrates, err := cast.ToIntSliceE(splitList(v))
		if err != nil {
			return fmt.Errorf("BITRATE_LAB_VIDEO_BITRATES: %w", err)
		}
		c.Video.Bitrates = bitrates
	}
	if v, ok := lookupEnv("BITRATE_LAB_AUDIO_BITRATES"); ok {
		bitrates, err := cast.ToIntSliceE(splitList(v))
		if err != nil {
			return fmt.Errorf("BITRATE_LAB_AUDIO_BITRATES: %w", err)
		}
		c.Audio.Bitrates = bitrates
	}
	if v, ok := lookupEnv("BITRATE_LAB_VIDEO_QUALITIES"); ok {
		qualities, err := floatList(v)
		if err != nil {
			return fmt.Errorf("BITRATE_LAB_VIDEO_QUALITIES: %w", err)
		}
		c.Video.Qualities = qualities
	}
	if v, ok := lookupEnv("BITRATE_LAB_AUDIO_QUALITIES"); ok {
		qualities, err := floatList(v)
		if err != nil {
			return fmt.Errorf("BITRATE_LAB_AUDIO_QUALITIES: %w", err)
		}
		c.Audio.Qualities = qualities
	}
	if v, ok := lookupEnv("S3_BUCKET_NAME"); ok {
		c.Storage.Bucket = v
	}
	if v, ok := lookupEnv("S3_ENDPOINT"); ok {
		c.Storage.Endpoint = v
	}
	if v, ok := lookupEnv("S3_REGION"); ok {
		c.Storage.Region = v
	}
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		c.Queue.RedisAddr = v
	}
	if v, ok := lookupEnv("WORKER_CONCURRENCY"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("WORKER_CONCURRENCY: %w", err)
		}
		c.Queue.Concurrency = n
	}
	if v, ok := lookupEnv("API_BIND"); ok {
		c.API.Bind = v
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func floatList(value string) ([]float64, error) {
	parts := splitList(value)
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := cast.ToFloat64E(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
