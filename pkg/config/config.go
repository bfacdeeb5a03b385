// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Environment variables that override file settings.
const (
	EnvOutputDir       = "SHORTGEN_OUTPUT_DIR"
	EnvTempDir         = "SHORTGEN_TEMP_DIR"
	EnvFFmpegPath      = "SHORTGEN_FFMPEG_PATH"
	EnvLogLevel        = "SHORTGEN_LOG_LEVEL"
	EnvYouTubeCredFile = "YOUTUBE_CREDENTIALS_FILE"
	EnvYouTubeToken    = "YOUTUBE_TOKEN_FILE"
)

// Config represents the full configuration for shortgen.
type Config struct {
	Video      VideoConfig      `yaml:"video" toml:"video"`
	Scheduling SchedulingConfig `yaml:"scheduling" toml:"scheduling"`
	Platforms  PlatformsConfig  `yaml:"platforms" toml:"platforms"`
	Content    ContentConfig    `yaml:"content" toml:"content"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// VideoConfig controls synthesis and validation.
type VideoConfig struct {
	OutputDirectory    string `yaml:"output_directory" toml:"output_directory"`
	TempDirectory      string `yaml:"temp_directory" toml:"temp_directory"`
	CleanupAfterUpload bool   `yaml:"cleanup_after_upload" toml:"cleanup_after_upload"`
	FontPath           string `yaml:"font_path" toml:"font_path"`
	FFmpegPath         string `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	DecodeCheck        bool   `yaml:"decode_check" toml:"decode_check"`
	DurationSeconds    uint32 `yaml:"duration_seconds" toml:"duration_seconds"`
	FontSize           uint32 `yaml:"font_size" toml:"font_size"`
	DebugDir           string `yaml:"debug_dir" toml:"debug_dir"`
}

// SchedulingConfig sets when the daily run happens.
type SchedulingConfig struct {
	Timezone      string `yaml:"timezone" toml:"timezone"`
	DailyPostTime string `yaml:"daily_post_time" toml:"daily_post_time"`
}

// PlatformsConfig holds per-platform settings.
type PlatformsConfig struct {
	YouTube PlatformConfig `yaml:"youtube" toml:"youtube"`
	TikTok  PlatformConfig `yaml:"tiktok" toml:"tiktok"`
	Mock    PlatformConfig `yaml:"mock" toml:"mock"`
}

// PlatformConfig configures one upload target.
type PlatformConfig struct {
	Enabled          bool   `yaml:"enabled" toml:"enabled"`
	UploadAsPrivate  bool   `yaml:"upload_as_private" toml:"upload_as_private"`
	MaxDailyUploads  int    `yaml:"max_daily_uploads" toml:"max_daily_uploads"`
	SimulateFailures bool   `yaml:"simulate_failures" toml:"simulate_failures"`
	CredentialsFile  string `yaml:"credentials_file" toml:"credentials_file"`
	TokenFile        string `yaml:"token_file" toml:"token_file"`
}

// ContentConfig locates the catalog and the posting history.
type ContentConfig struct {
	CatalogPath string `yaml:"catalog_path" toml:"catalog_path"`
	HistoryPath string `yaml:"history_path" toml:"history_path"`
}

// MetricsConfig controls the prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string `yaml:"address" toml:"address"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Video: VideoConfig{
			OutputDirectory: "output",
			TempDirectory:   "temp",
			DurationSeconds: 15,
			FontSize:        72,
			DebugDir:        "./debug",
		},
		Scheduling: SchedulingConfig{
			Timezone:      "UTC",
			DailyPostTime: "09:00",
		},
		Platforms: PlatformsConfig{
			YouTube: PlatformConfig{UploadAsPrivate: true, MaxDailyUploads: 1},
			TikTok:  PlatformConfig{MaxDailyUploads: 1},
			Mock:    PlatformConfig{Enabled: true, MaxDailyUploads: 1},
		},
		Content: ContentConfig{
			CatalogPath: "content/catalog.csv",
			HistoryPath: "content/history.db",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromFile loads configuration from a YAML or TOML file, chosen by
// extension. Missing keys keep their defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Video.OutputDirectory = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		c.Video.TempDirectory = v
	}
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		c.Video.FFmpegPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvYouTubeCredFile); v != "" {
		c.Platforms.YouTube.CredentialsFile = v
	}
	if v := os.Getenv(EnvYouTubeToken); v != "" {
		c.Platforms.YouTube.TokenFile = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Video.OutputDirectory == "" {
		errs = append(errs, errors.New("video.output_directory is empty"))
	}
	if c.Video.TempDirectory == "" {
		errs = append(errs, errors.New("video.temp_directory is empty"))
	}
	if c.Video.DurationSeconds == 0 {
		errs = append(errs, errors.New("video.duration_seconds must be positive"))
	}
	if c.Video.FontSize == 0 {
		errs = append(errs, errors.New("video.font_size must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.PostTime(); err != nil {
		errs = append(errs, err)
	}
	for name, p := range c.Platforms.all() {
		if p.MaxDailyUploads < 0 {
			errs = append(errs, fmt.Errorf("platforms.%s.max_daily_uploads must not be negative", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Location returns the scheduling time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduling.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduling.timezone %q: %w", c.Scheduling.Timezone, err)
	}
	return loc, nil
}

// PostTime returns the daily post time as hour and minute.
func (c Config) PostTime() (hour, minute int, err error) {
	parts := strings.Split(c.Scheduling.DailyPostTime, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("scheduling.daily_post_time %q is not HH:MM", c.Scheduling.DailyPostTime)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduling.daily_post_time %q has an invalid hour", c.Scheduling.DailyPostTime)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduling.daily_post_time %q has an invalid minute", c.Scheduling.DailyPostTime)
	}
	return hour, minute, nil
}

// Platform returns the settings for a platform name.
func (p PlatformsConfig) Platform(name string) (PlatformConfig, bool) {
	cfg, ok := p.all()[name]
	return cfg, ok
}

// EnabledNames returns the enabled platforms in a fixed order.
func (p PlatformsConfig) EnabledNames() []string {
	var names []string
	for _, name := range []string{"youtube", "tiktok", "mock"} {
		if p.all()[name].Enabled {
			names = append(names, name)
		}
	}
	return names
}

func (p PlatformsConfig) all() map[string]PlatformConfig {
	return map[string]PlatformConfig{
		"youtube": p.YouTube,
		"tiktok":  p.TikTok,
		"mock":    p.Mock,
	}
}
