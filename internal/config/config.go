package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and output locations for a sweep.
type Paths struct {
	Input          string `toml:"input"`
	OutputDir      string `toml:"output_dir"`
	ReportDir      string `toml:"report_dir"`
	ExtractedAudio string `toml:"extracted_audio"`
}

// Ladder describes one bitrate sweep: the bitrates to encode at and the
// subjective quality score attached to each of them.
type Ladder struct {
	Bitrates  []int     `toml:"bitrates"`
	Qualities []float64 `toml:"qualities"`
	Format    string    `toml:"format"`
}

// FFmpeg contains encoder settings. Probing always uses ffprobe from PATH.
type FFmpeg struct {
	Binary       string `toml:"binary"`
	ProbeTimeout int    `toml:"probe_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Storage contains S3-compatible bucket settings. Credentials are read from
// S3_ACCESS_KEY_ID and S3_ACCESS_KEY_SECRET only.
type Storage struct {
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
	Prefix   string `toml:"prefix"`
}

// Queue contains the asynq/redis settings used by the worker and the API.
type Queue struct {
	RedisAddr   string `toml:"redis_addr"`
	Concurrency int    `toml:"concurrency"`
	MaxRetry    int    `toml:"max_retry"`
}

// API contains HTTP server settings.
type API struct {
	Bind         string   `toml:"bind"`
	AllowOrigins []string `toml:"allow_origins"`
	PresignTTL   int      `toml:"presign_ttl"`
}

// Config encapsulates all configuration values for bitrate-lab.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Video   Ladder  `toml:"video"`
	Audio   Ladder  `toml:"audio"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Logging Logging `toml:"logging"`
	Storage Storage `toml:"storage"`
	Queue   Queue   `toml:"queue"`
	API     API     `toml:"api"`
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error: defaults plus environment overrides are used instead.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	loadDotEnv()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("bitrate-lab.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bitrate-lab/config.toml")
}

// ProbeTimeout returns the ffprobe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.FFmpeg.ProbeTimeout) * time.Second
}

// PresignTTL returns how long presigned URLs issued by the API stay valid.
func (c *Config) PresignTTL() time.Duration {
	return time.Duration(c.API.PresignTTL) * time.Second
}

// StorageEnabled reports whether a bucket is configured.
func (c *Config) StorageEnabled() bool {
	return strings.TrimSpace(c.Storage.Bucket) != ""
}

// EnsureDirectories creates the output and report directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
