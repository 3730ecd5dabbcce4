package config

import (
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.Input, err = expandPath(strings.TrimSpace(c.Paths.Input)); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return err
	}
	if c.Paths.ReportDir, err = expandPath(strings.TrimSpace(c.Paths.ReportDir)); err != nil {
		return err
	}
	if c.Paths.ExtractedAudio, err = expandPath(strings.TrimSpace(c.Paths.ExtractedAudio)); err != nil {
		return err
	}

	c.Video.Format = strings.ToLower(strings.TrimSpace(c.Video.Format))
	if c.Video.Format == "" {
		c.Video.Format = defaultVideoFormat
	}
	c.Audio.Format = strings.ToLower(strings.TrimSpace(c.Audio.Format))
	if c.Audio.Format == "" {
		c.Audio.Format = defaultAudioFormat
	}

	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	if strings.TrimSpace(c.Storage.Region) == "" {
		c.Storage.Region = defaultRegion
	}
	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = 1
	}
	return nil
}
