package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return errors.New("paths.input must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if err := validateLadder("video", c.Video); err != nil {
		return err
	}
	if err := validateLadder("audio", c.Audio); err != nil {
		return err
	}
	if c.FFmpeg.ProbeTimeout < 0 {
		return errors.New("ffmpeg.probe_timeout must be >= 0")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Queue.MaxRetry < 0 {
		return errors.New("queue.max_retry must be >= 0")
	}
	if c.API.PresignTTL <= 0 {
		return errors.New("api.presign_ttl must be positive")
	}
	return nil
}

func validateLadder(name string, l Ladder) error {
	if len(l.Bitrates) == 0 {
		return fmt.Errorf("%s.bitrates must not be empty", name)
	}
	if len(l.Bitrates) != len(l.Qualities) {
		return fmt.Errorf("%s.bitrates and %s.qualities must have the same length (%d != %d)", name, name, len(l.Bitrates), len(l.Qualities))
	}
	for _, kbps := range l.Bitrates {
		if kbps <= 0 {
			return fmt.Errorf("%s.bitrates: %d is not a positive kbps value", name, kbps)
		}
	}
	for _, q := range l.Qualities {
		if q < 0 || q > 100 {
			return fmt.Errorf("%s.qualities: %v is outside 0-100", name, q)
		}
	}
	return nil
}
