package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := config.Limits().Check(); err != nil {
		return fmt.Errorf("device config validation failed: %w", err)
	}

	if err := validateScanConfig(&config.Scan, config.Device.LengthMax); err != nil {
		return fmt.Errorf("scan config validation failed: %w", err)
	}

	if err := validateStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}

	if config.Store.Backend == "r2" {
		if err := validateR2Config(&config.R2); err != nil {
			return fmt.Errorf("R2 config validation failed: %w", err)
		}
	}

	if err := validateEngineConfig(&config.Engine); err != nil {
		return fmt.Errorf("engine config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	return nil
}

// validateR2Config validates R2 specific configuration
func validateR2Config(config *R2Config) error {
	if strings.TrimSpace(config.AccountID) == "" {
		return fmt.Errorf("account_id is required")
	}

	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.AccessKeySecret) == "" {
		return fmt.Errorf("access_key_secret is required")
	}

	if strings.TrimSpace(config.BucketName) == "" {
		return fmt.Errorf("bucket_name is required")
	}

	if !isValidBucketName(config.BucketName) {
		return fmt.Errorf("invalid bucket_name format: %s", config.BucketName)
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateScanConfig checks the configuration record defaults are usable
func validateScanConfig(config *ScanConfig, lengthMax float64) error {
	lengths := map[string]float64{
		"slice_thickness": config.SliceThickness,
		"pixel_width":     config.PixelWidth,
		"pixel_height":    config.PixelHeight,
		"pitch_width":     config.PitchWidth,
		"pitch_height":    config.PitchHeight,
	}
	for name, v := range lengths {
		if v <= 0 || v > lengthMax {
			return fmt.Errorf("%s must be in (0, %g], got: %g", name, lengthMax, v)
		}
	}
	return nil
}

// validateStoreConfig validates the configuration store selection
func validateStoreConfig(config *StoreConfig) error {
	validBackends := map[string]bool{
		"file": true,
		"r2":   true,
	}
	if !validBackends[strings.ToLower(config.Backend)] {
		return fmt.Errorf("invalid backend: %s (valid: file, r2)", config.Backend)
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %d", config.Timeout)
	}
	return nil
}

// validateEngineConfig validates the simulated engine settings
func validateEngineConfig(config *EngineConfig) error {
	if config.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got: %d", config.Steps)
	}
	if config.StepIntervalMS < 0 {
		return fmt.Errorf("step_interval_ms must be non-negative, got: %d", config.StepIntervalMS)
	}
	if config.PreviewSize < 16 || config.PreviewSize > 1024 {
		return fmt.Errorf("preview_size must be in [16, 1024], got: %d", config.PreviewSize)
	}
	return nil
}

// validateUIConfig validates the terminal settings
func validateUIConfig(config *UIConfig) error {
	validPreviews := map[string]bool{
		"auto":   true,
		"kitty":  true,
		"iterm2": true,
		"sixel":  true,
		"text":   true,
	}
	if !validPreviews[strings.ToLower(config.Preview)] {
		return fmt.Errorf("invalid preview: %s (valid: auto, kitty, iterm2, sixel, text)", config.Preview)
	}
	if config.LogLines <= 0 {
		return fmt.Errorf("log_lines must be positive, got: %d", config.LogLines)
	}
	return nil
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i, char := range name {
		if !isAlphaNum(byte(char)) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
