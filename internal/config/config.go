package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppName names the config directory and the config file.
const AppName = "countdown"

// DefaultMinutes is the timer length used until the user configures one.
const DefaultMinutes = 25

type Config struct {
	Timer   TimerConfig   `mapstructure:"timer"`
	Store   StoreConfig   `mapstructure:"store"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	UI      UIConfig      `mapstructure:"ui"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type TimerConfig struct {
	DefaultMinutes int `mapstructure:"default_minutes" validate:"min=1,max=1440"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite diskv memory"`
	Path    string `mapstructure:"path" validate:"required_unless=Backend memory"`
}

// HistoryConfig locates the finished-countdown log. An empty path disables it.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

type NotifyConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=desktop log none"`
}

type UIConfig struct {
	ReportFocus bool `mapstructure:"report_focus"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

// Dir returns the per-user directory holding the config file and data files.
// It falls back to the working directory when no user config dir is known.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, AppName)
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("timer.default_minutes", DefaultMinutes)
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", filepath.Join(dir, "prefs.db"))
	v.SetDefault("history.path", filepath.Join(dir, "history.db"))
	v.SetDefault("log.file", filepath.Join(dir, "countdown.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("notify.backend", "desktop")
	v.SetDefault("ui.report_focus", true)
	v.SetDefault("metrics.listen", "")
}

// Load reads configuration from path, or from countdown.yaml in Dir() and the
// working directory when path is empty. A missing default config file is not
// an error; COUNTDOWN_* environment variables override file values.
func Load(path string) (*Config, error) {
	dir := Dir()
	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix("COUNTDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
