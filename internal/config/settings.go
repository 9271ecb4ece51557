package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/manga-downloader/internal/model"
	"github.com/spf13/viper"
)

// ErrInvalidSaveLocation is returned when the save location is not an existing directory.
var ErrInvalidSaveLocation = errors.New("save location is not an existing directory")

// Resolve modes.
const (
	ResolveStatic   = "static"
	ResolveRendered = "rendered"
)

// EnvPrefix is the prefix of environment variables overriding settings.
const EnvPrefix = "MANGADL"

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	SaveLocation string `json:"save_location" mapstructure:"save_location"`
	StagingRoot  string `json:"staging_root" mapstructure:"staging_root"`

	// Concurrency settings
	MaxConcurrentPageDownloads    int `json:"max_concurrent_pages" mapstructure:"max_concurrent_pages"`
	MaxConcurrentChapterDiscovery int `json:"max_concurrent_chapters" mapstructure:"max_concurrent_chapters"`

	// HTTP settings
	UserAgent      string  `json:"user_agent" mapstructure:"user_agent"`
	RequestTimeout float64 `json:"request_timeout" mapstructure:"request_timeout"` // seconds

	// Site settings
	ProfileURLFormat  string `json:"profile_url_format" mapstructure:"profile_url_format"`
	ContentRootFormat string `json:"content_root_format" mapstructure:"content_root_format"`

	// Resolver settings
	ResolveMode        string  `json:"resolve_mode" mapstructure:"resolve_mode"` // static, rendered
	RenderPollInterval float64 `json:"render_poll_interval" mapstructure:"render_poll_interval"` // seconds
	RenderTimeout      float64 `json:"render_timeout" mapstructure:"render_timeout"`             // seconds
	RenderIDExpression string  `json:"render_id_expression" mapstructure:"render_id_expression"`

	// Publish settings
	PublishBucket string `json:"publish_bucket" mapstructure:"publish_bucket"`
	PublishPrefix string `json:"publish_prefix" mapstructure:"publish_prefix"`
	PublishRegion string `json:"publish_region" mapstructure:"publish_region"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return &Settings{
		SaveLocation: "",
		StagingRoot:  filepath.Join(cacheDir, "manga-dl", "staging"),

		MaxConcurrentPageDownloads:    6,
		MaxConcurrentChapterDiscovery: 4,

		UserAgent:      "MangaWeb",
		RequestTimeout: 60,

		ProfileURLFormat:  "http://mangapark.me/manga/%s",
		ContentRootFormat: "http://2.p.mpcdn.net/%s",

		ResolveMode:        ResolveStatic,
		RenderPollInterval: 2,
		RenderTimeout:      60,
		RenderIDExpression: `() => (typeof _manga_id === "undefined" ? "" : String(_manga_id))`,

		PublishRegion: "us-east-1",
	}
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "manga-dl", "config.json")
}

// Load reads settings from a JSON file, layered over the defaults and
// overridden by MANGADL_* environment variables.
//
// A missing file is not an error; the defaults (plus environment) are used.
func Load(path string) (*Settings, error) {
	v := viper.New()
	defaults := DefaultSettings()
	for key, value := range defaults.asMap() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetSaveLocation validates dir and stores its absolute path.
func (s *Settings) SetSaveLocation(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := ValidateSaveLocation(abs); err != nil {
		return err
	}
	s.SaveLocation = abs
	return nil
}

// ValidateSaveLocation checks that dir exists and is a directory.
func ValidateSaveLocation(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no save location set", ErrInvalidSaveLocation)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaveLocation, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidSaveLocation, dir)
	}
	return nil
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (s *Settings) RequestTimeoutDuration() time.Duration {
	return seconds(s.RequestTimeout)
}

// RenderPollIntervalDuration returns RenderPollInterval as a time.Duration.
func (s *Settings) RenderPollIntervalDuration() time.Duration {
	return seconds(s.RenderPollInterval)
}

// RenderTimeoutDuration returns RenderTimeout as a time.Duration.
func (s *Settings) RenderTimeoutDuration() time.Duration {
	return seconds(s.RenderTimeout)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// asMap flattens the settings into viper keys.
func (s *Settings) asMap() map[string]any {
	return map[string]any{
		"save_location":           s.SaveLocation,
		"staging_root":            s.StagingRoot,
		"max_concurrent_pages":    s.MaxConcurrentPageDownloads,
		"max_concurrent_chapters": s.MaxConcurrentChapterDiscovery,
		"user_agent":              s.UserAgent,
		"request_timeout":         s.RequestTimeout,
		"profile_url_format":      s.ProfileURLFormat,
		"content_root_format":     s.ContentRootFormat,
		"resolve_mode":            s.ResolveMode,
		"render_poll_interval":    s.RenderPollInterval,
		"render_timeout":          s.RenderTimeout,
		"render_id_expression":    s.RenderIDExpression,
		"publish_bucket":          s.PublishBucket,
		"publish_prefix":          s.PublishPrefix,
		"publish_region":          s.PublishRegion,
	}
}

// ToSiteConfig converts settings to SiteConfig.
func (s *Settings) ToSiteConfig() *model.SiteConfig {
	return &model.SiteConfig{
		ProfileURLFormat:  s.ProfileURLFormat,
		ContentRootFormat: s.ContentRootFormat,
	}
}
