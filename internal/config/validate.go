package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRanges(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateS3(); err != nil {
		return err
	}
	return nil
}

// validateRanges applies the numeric field tags. Misordered shrink bounds
// (max_final_s below min_final_s) are deliberately not rejected; the clamp
// ordering resolves them.
func (c *Config) validateRanges() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			f := fieldErrs[0]
			return fmt.Errorf("config field %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Detection.ThresholdDB > 0 {
		return errors.New("detection.threshold_db must be 0 dBFS or below")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if strings.TrimSpace(c.Encode.VideoCodec) == "" {
		return errors.New("encode.video_codec must be set")
	}
	if strings.TrimSpace(c.Encode.AudioCodec) == "" {
		return errors.New("encode.audio_codec must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateS3() error {
	if !c.S3.Enabled {
		return nil
	}
	if c.S3.Bucket == "" {
		return errors.New("s3.bucket must be set when s3.enabled is true")
	}
	if c.S3.Region == "" {
		return errors.New("s3.region must be set when s3.enabled is true")
	}
	return nil
}
