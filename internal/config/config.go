package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	// OutputSuffix is appended to the source stem when naming the
	// edited file, e.g. talk.mp4 -> talk_edited.mp4.
	OutputSuffix string `toml:"output_suffix"`
}

// Detection contains silence detection settings handed to ffmpeg.
type Detection struct {
	// ThresholdDB is the silencedetect noise floor in dBFS.
	ThresholdDB float64 `toml:"threshold_db"`
	// MinSilenceSec is the minimum silence length silencedetect reports.
	MinSilenceSec float64 `toml:"min_silence_s" validate:"gte=0"`
	// Denoise toggles the afftdn pre-clean on the detection track.
	Denoise    bool `toml:"denoise"`
	HighpassHz int  `toml:"highpass_hz" validate:"gte=0"`
	LowpassHz  int  `toml:"lowpass_hz" validate:"gte=0"`
}

// Shrink contains the gentle-shrink policy tunables, in seconds.
type Shrink struct {
	LongThresholdSec float64 `toml:"long_threshold_s" validate:"gte=0"`
	ReduceRatio      float64 `toml:"reduce_ratio" validate:"gte=0,lte=1"`
	MinFinalSec      float64 `toml:"min_final_s" validate:"gte=0"`
	// MaxFinalSec caps the retained silence length. Negative disables
	// the cap.
	MaxFinalSec   float64 `toml:"max_final_s"`
	HeadTailRatio float64 `toml:"head_tail_ratio" validate:"gte=0,lte=1"`
}

// Encode contains render output settings.
type Encode struct {
	VideoCodec   string `toml:"video_codec"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf" validate:"gte=0,lte=51"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`
	Faststart    bool   `toml:"faststart"`
}

// Filters contains the opaque audio filter chains applied after
// concatenation. Chain syntax belongs to ffmpeg; this tool never parses it.
type Filters struct {
	AudioPreChain  string `toml:"audio_pre_chain"`
	AudioPostChain string `toml:"audio_post_chain"`
}

// Tools names the external binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg" env:"PAUSETRIM_FFMPEG"`
	FFprobe string `toml:"ffprobe" env:"PAUSETRIM_FFPROBE"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level" env:"PAUSETRIM_LOG_LEVEL"`
	Format string `toml:"format" env:"PAUSETRIM_LOG_FORMAT"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic" env:"PAUSETRIM_NTFY_TOPIC"`
	RequestTimeout int    `toml:"request_timeout" validate:"gte=0"`
}

// S3 contains optional upload settings for rendered output.
type S3 struct {
	Enabled         bool   `toml:"enabled"`
	Bucket          string `toml:"bucket" env:"PAUSETRIM_S3_BUCKET"`
	Region          string `toml:"region" env:"PAUSETRIM_S3_REGION"`
	Prefix          string `toml:"prefix"`
	Endpoint        string `toml:"endpoint" env:"PAUSETRIM_S3_ENDPOINT"`
	AccessKeyID     string `toml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `toml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
}

// Config encapsulates all configuration values for pausetrim.
//
// Configuration sections by subsystem:
//   - Paths: work, log and default output directories
//   - Detection: silencedetect threshold and detection-track cleanup
//   - Shrink: gentle-shrink policy for long silences
//   - Encode: render codec settings
//   - Filters: post-concat audio filter chains
//   - Tools: ffmpeg/ffprobe binary names
//   - Notifications: ntfy push notification settings
//   - S3: optional upload of rendered files
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Detection     Detection     `toml:"detection"`
	Shrink        Shrink        `toml:"shrink"`
	Encode        Encode        `toml:"encode"`
	Filters       Filters       `toml:"filters"`
	Tools         Tools         `toml:"tools"`
	Notifications Notifications `toml:"notifications"`
	S3            S3            `toml:"s3"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pausetrim/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after the file. The returned config has all path
// fields expanded and normalized. The boolean reports whether a file was
// found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

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
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, "", false, fmt.Errorf("apply environment overrides: %w", err)
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pausetrim.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing
// to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories pausetrim writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if err := os.MkdirAll(c.Paths.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", c.Paths.OutputDir, err)
		}
	}
	return nil
}

// QueueDBPath returns the path to the job queue database.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.WorkDir, "queue.db")
}

// LockFilePath returns the path to the batch processor lock file.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.WorkDir, "pausetrim.lock")
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
