// Package config loads settings from ~/.adhdrpg.yaml, RPG_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "RPG"
	fileName  = ".adhdrpg"
)

// Companion providers.
const (
	ProviderHTTP      = "http"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

type Companion struct {
	Provider     string        `mapstructure:"provider"`
	ServerURL    string        `mapstructure:"server_url"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Focus struct {
	Minutes      int `mapstructure:"minutes"`
	BreakMinutes int `mapstructure:"break_minutes"`
}

type Streak struct {
	DefaultGoal int `mapstructure:"default_goal"`
}

type Undo struct {
	Window time.Duration `mapstructure:"window"`
}

type Server struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type Config struct {
	DBPath      string    `mapstructure:"db_path"`
	CatalogPath string    `mapstructure:"catalog_path"`
	Companion   Companion `mapstructure:"companion"`
	Focus       Focus     `mapstructure:"focus"`
	Streak      Streak    `mapstructure:"streak"`
	Undo        Undo      `mapstructure:"undo"`
	Server      Server    `mapstructure:"server"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("companion.provider", ProviderHTTP)
	v.SetDefault("companion.server_url", "http://localhost:8000")
	v.SetDefault("companion.model", "claude-sonnet-4-5")
	v.SetDefault("companion.api_key", "")
	v.SetDefault("companion.poll_interval", 30*time.Second)
	v.SetDefault("companion.timeout", 30*time.Second)
	v.SetDefault("focus.minutes", 25)
	v.SetDefault("focus.break_minutes", 5)
	v.SetDefault("streak.default_goal", 7)
	v.SetDefault("undo.window", 30*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
}

// New returns a viper instance with defaults and env binding. When file is
// empty it looks for .adhdrpg.yaml in the home and working directories.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// ANTHROPIC_API_KEY is honoured as well as RPG_COMPANION_API_KEY.
	_ = v.BindEnv("companion.api_key", EnvPrefix+"_COMPANION_API_KEY", "ANTHROPIC_API_KEY")
	return v
}

// BindFlags maps command-line flags onto config keys. Flags that are not
// present in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the config file, if there is one, and decodes v.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.CatalogPath = expandHome(cfg.CatalogPath)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Companion.Provider {
	case ProviderHTTP, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("companion.provider: unknown provider %q", c.Companion.Provider)
	}
	if c.Companion.Provider == ProviderHTTP && c.Companion.ServerURL == "" {
		return errors.New("companion.server_url is required for the http provider")
	}
	if c.Focus.Minutes <= 0 || c.Focus.BreakMinutes <= 0 {
		return errors.New("focus.minutes and focus.break_minutes must be positive")
	}
	if c.Streak.DefaultGoal <= 0 {
		return errors.New("streak.default_goal must be positive")
	}
	if c.Undo.Window <= 0 {
		return errors.New("undo.window must be positive")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
