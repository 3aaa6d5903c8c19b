package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rebeliceyang/surveylens/internal/models"
)

// AppName names the config directory and the env prefix
const AppName = "surveylens"

// Config holds all application configuration
type Config struct {
	Engine  models.EngineConfig `mapstructure:"engine"`
	Assets  AssetsConfig        `mapstructure:"assets"`
	UI      UIConfig            `mapstructure:"ui"`
	Presets PresetsConfig       `mapstructure:"presets"`
	Log     LogConfig           `mapstructure:"log"`
}

type AssetsConfig struct {
	// BaseURL serves the dataset and geography files when no local copy
	// is configured
	BaseURL       string        `mapstructure:"base_url"`
	CacheDir      string        `mapstructure:"cache_dir"`
	GeographyPath string        `mapstructure:"geography_path"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
	// ShareBaseURL is prepended to fragments when copying a share link
	ShareBaseURL    string        `mapstructure:"share_base_url"`
	PanelWidthRatio int           `mapstructure:"panel_width_ratio"`
	URLDebounce     time.Duration `mapstructure:"url_debounce"`
	HistorySize     int           `mapstructure:"history_size"`
	FetchLimit      int           `mapstructure:"fetch_limit"`
}

type PresetsConfig struct {
	// Dir holds the user presets file; empty means the config directory
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	// File receives log output; the terminal dashboard owns stdout/stderr
	File string `mapstructure:"file"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Engine: models.EngineConfig{
			Driver:       "duckdb",
			Schema:       "survey",
			QueryTimeout: 30 * time.Second,
			CacheEntries: 256,
		},
		Assets: AssetsConfig{
			FetchTimeout: time.Minute,
		},
		UI: UIConfig{
			Theme:           "default",
			PanelWidthRatio: 30,
			URLDebounce:     150 * time.Millisecond,
			HistorySize:     100,
			FetchLimit:      8,
		},
		Presets: PresetsConfig{
			Watch: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from files and SURVEYLENS_* environment
// variables
func Load() (*Config, error) {
	return load("")
}

// LoadFile loads configuration from an explicit file
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}

		// 2. Current directory
		v.AddConfigPath(".")

		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := GetDefaults()
	v.SetDefault("engine.driver", d.Engine.Driver)
	v.SetDefault("engine.dataset_path", d.Engine.DatasetPath)
	v.SetDefault("engine.schema", d.Engine.Schema)
	v.SetDefault("engine.dsn", d.Engine.DSN)
	v.SetDefault("engine.query_timeout", d.Engine.QueryTimeout)
	v.SetDefault("engine.cache_entries", d.Engine.CacheEntries)
	v.SetDefault("assets.base_url", d.Assets.BaseURL)
	v.SetDefault("assets.cache_dir", d.Assets.CacheDir)
	v.SetDefault("assets.geography_path", d.Assets.GeographyPath)
	v.SetDefault("assets.fetch_timeout", d.Assets.FetchTimeout)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.share_base_url", d.UI.ShareBaseURL)
	v.SetDefault("ui.panel_width_ratio", d.UI.PanelWidthRatio)
	v.SetDefault("ui.url_debounce", d.UI.URLDebounce)
	v.SetDefault("ui.history_size", d.UI.HistorySize)
	v.SetDefault("ui.fetch_limit", d.UI.FetchLimit)
	v.SetDefault("presets.dir", d.Presets.Dir)
	v.SetDefault("presets.watch", d.Presets.Watch)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.file", d.Log.File)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	if c.UI.URLDebounce < 0 {
		return fmt.Errorf("ui.url_debounce must not be negative")
	}
	if c.UI.PanelWidthRatio < 10 || c.UI.PanelWidthRatio > 90 {
		return fmt.Errorf("ui.panel_width_ratio must be between 10 and 90, got %d", c.UI.PanelWidthRatio)
	}
	if c.Engine.CacheEntries < 0 {
		return fmt.Errorf("engine.cache_entries must not be negative")
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetCachePath returns the directory downloaded assets are kept in
func (c *Config) GetCachePath() (string, error) {
	if c.Assets.CacheDir != "" {
		return c.Assets.CacheDir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetPresetsDir returns the directory of the user presets file
func (c *Config) GetPresetsDir() (string, error) {
	if c.Presets.Dir != "" {
		return c.Presets.Dir, nil
	}
	return GetConfigPath()
}
