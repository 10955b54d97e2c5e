package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// Config holds the complete application configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Device DeviceConfig `mapstructure:"device" yaml:"device"`
	Scan   ScanConfig   `mapstructure:"scan" yaml:"scan"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	R2     R2Config     `mapstructure:"r2" yaml:"r2"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	UI     UIConfig     `mapstructure:"ui" yaml:"ui"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// DeviceConfig holds the bounds and defaults reported by the bench
type DeviceConfig struct {
	Distance      float64  `mapstructure:"distance" yaml:"distance"`
	WindowDefault int      `mapstructure:"window_default" yaml:"window_default"`
	LevelDefault  int      `mapstructure:"level_default" yaml:"level_default"`
	StepMax       int      `mapstructure:"step_max" yaml:"step_max"`
	ZoomMin       float64  `mapstructure:"zoom_min" yaml:"zoom_min"`
	ZoomMax       float64  `mapstructure:"zoom_max" yaml:"zoom_max"`
	ScanMax       int      `mapstructure:"scan_max" yaml:"scan_max"`
	NoiseCap      int      `mapstructure:"noise_cap" yaml:"noise_cap"`
	LengthMax     float64  `mapstructure:"length_max" yaml:"length_max"`
	GainChoices   []string `mapstructure:"gain_choices" yaml:"gain_choices"`
	AutoFocus     bool     `mapstructure:"auto_focus" yaml:"auto_focus"`
	AutoLight     bool     `mapstructure:"auto_light" yaml:"auto_light"`
}

// ScanConfig holds the configuration record defaults
type ScanConfig struct {
	SliceThickness float64  `mapstructure:"slice_thickness" yaml:"slice_thickness"`
	PixelWidth     float64  `mapstructure:"pixel_width" yaml:"pixel_width"`
	PixelHeight    float64  `mapstructure:"pixel_height" yaml:"pixel_height"`
	PitchWidth     float64  `mapstructure:"pitch_width" yaml:"pitch_width"`
	PitchHeight    float64  `mapstructure:"pitch_height" yaml:"pitch_height"`
	Orientations   []string `mapstructure:"orientations" yaml:"orientations"`
	RotationModes  []string `mapstructure:"rotation_modes" yaml:"rotation_modes"`
}

// StoreConfig selects where configuration records are kept
type StoreConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	DefaultPath string `mapstructure:"default_path" yaml:"default_path"`
	Timeout     int    `mapstructure:"timeout" yaml:"timeout"`
}

// R2Config holds R2/S3 specific configuration for the object store backend
type R2Config struct {
	AccountID       string `mapstructure:"account_id" yaml:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret" yaml:"-"`
	BucketName      string `mapstructure:"bucket_name" yaml:"bucket_name"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Region          string `mapstructure:"region" yaml:"region"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
}

// EngineConfig tunes the simulated engine
type EngineConfig struct {
	Steps          int     `mapstructure:"steps" yaml:"steps"`
	StepIntervalMS int     `mapstructure:"step_interval_ms" yaml:"step_interval_ms"`
	PreviewSize    int     `mapstructure:"preview_size" yaml:"preview_size"`
	FocusDistance  float64 `mapstructure:"focus_distance" yaml:"focus_distance"`
	Magnification  float64 `mapstructure:"magnification" yaml:"magnification"`
	Seed           uint64  `mapstructure:"seed" yaml:"seed"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	AltScreen bool   `mapstructure:"alt_screen" yaml:"alt_screen"`
	Mouse     bool   `mapstructure:"mouse" yaml:"mouse"`
	LogLines  int    `mapstructure:"log_lines" yaml:"log_lines"`
	Preview   string `mapstructure:"preview" yaml:"preview"`
}

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RECON")
	v.AutomaticEnv()

	v.BindEnv("log.level", "RECON_LOG_LEVEL")
	v.BindEnv("log.format", "RECON_LOG_FORMAT")
	v.BindEnv("log.file", "RECON_LOG_FILE")
	v.BindEnv("store.backend", "RECON_STORE_BACKEND")
	v.BindEnv("store.default_path", "RECON_STORE_DEFAULT_PATH")
	v.BindEnv("r2.account_id", "RECON_R2_ACCOUNT_ID")
	v.BindEnv("r2.access_key_id", "RECON_R2_ACCESS_KEY_ID")
	v.BindEnv("r2.access_key_secret", "RECON_R2_ACCESS_KEY_SECRET")
	v.BindEnv("r2.bucket_name", "RECON_R2_BUCKET_NAME")
	v.BindEnv("r2.endpoint", "RECON_R2_ENDPOINT")
	v.BindEnv("r2.region", "RECON_R2_REGION")
	v.BindEnv("engine.steps", "RECON_ENGINE_STEPS")
	v.BindEnv("engine.step_interval_ms", "RECON_ENGINE_STEP_INTERVAL_MS")
	v.BindEnv("ui.preview", "RECON_UI_PREVIEW")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.reconsole")
		v.AddConfigPath("/etc/reconsole/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	d := values.DefaultLimits()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "reconsole", "app.log"))

	v.SetDefault("device.distance", d.Distance)
	v.SetDefault("device.window_default", d.WindowDefault)
	v.SetDefault("device.level_default", d.LevelDefault)
	v.SetDefault("device.step_max", d.StepMax)
	v.SetDefault("device.zoom_min", d.ZoomMin)
	v.SetDefault("device.zoom_max", d.ZoomMax)
	v.SetDefault("device.scan_max", d.ScanMax)
	v.SetDefault("device.noise_cap", d.NoiseCap)
	v.SetDefault("device.length_max", d.LengthMax)
	v.SetDefault("device.gain_choices", d.GainChoices)
	v.SetDefault("device.auto_focus", true)
	v.SetDefault("device.auto_light", true)

	v.SetDefault("scan.slice_thickness", d.SliceThickness)
	v.SetDefault("scan.pixel_width", d.PixelWidth)
	v.SetDefault("scan.pixel_height", d.PixelHeight)
	v.SetDefault("scan.pitch_width", d.PitchWidth)
	v.SetDefault("scan.pitch_height", d.PitchHeight)
	v.SetDefault("scan.orientations", d.Orientations)
	v.SetDefault("scan.rotation_modes", d.RotationModes)

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.default_path", "recon.yaml")
	v.SetDefault("store.timeout", 30)

	v.SetDefault("r2.endpoint", "auto")
	v.SetDefault("r2.region", "auto")
	v.SetDefault("r2.prefix", "configs/")

	v.SetDefault("engine.steps", 50)
	v.SetDefault("engine.step_interval_ms", 40)
	v.SetDefault("engine.preview_size", 128)
	v.SetDefault("engine.focus_distance", 180.0)
	v.SetDefault("engine.magnification", 2.0)
	v.SetDefault("engine.seed", 1)

	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.mouse", false)
	v.SetDefault("ui.log_lines", 500)
	v.SetDefault("ui.preview", "auto")
}

// Limits converts the device and scan sections into value model limits
func (c *Config) Limits() values.Limits {
	return values.Limits{
		Distance:       c.Device.Distance,
		StepMax:        c.Device.StepMax,
		WindowDefault:  c.Device.WindowDefault,
		LevelDefault:   c.Device.LevelDefault,
		ZoomMin:        c.Device.ZoomMin,
		ZoomMax:        c.Device.ZoomMax,
		ScanMax:        c.Device.ScanMax,
		NoiseCap:       c.Device.NoiseCap,
		LengthMax:      c.Device.LengthMax,
		GainChoices:    append([]string(nil), c.Device.GainChoices...),
		Orientations:   append([]string(nil), c.Scan.Orientations...),
		RotationModes:  append([]string(nil), c.Scan.RotationModes...),
		SliceThickness: c.Scan.SliceThickness,
		PixelWidth:     c.Scan.PixelWidth,
		PixelHeight:    c.Scan.PixelHeight,
		PitchWidth:     c.Scan.PitchWidth,
		PitchHeight:    c.Scan.PitchHeight,
	}
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(homeDir, ".reconsole", "config.toml")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	configPath := GetDefaultConfigPath()
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0700)
}
