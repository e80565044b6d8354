package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "NOTEBOT"
	defaultHTTPAddress   = "0.0.0.0:8080"
	defaultDatabasePath  = "bot.db"
	defaultLogLevel      = "info"
	defaultBusyTimeoutMS = 5000
)

// AppConfig captures runtime configuration for the state store API.
type AppConfig struct {
	HTTPAddress  string
	DatabasePath string
	BusyTimeout  time.Duration
	LogLevel     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("database.busy_timeout_ms", defaultBusyTimeoutMS)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	busyTimeoutMS := configViper.GetInt64("database.busy_timeout_ms")
	cfg := AppConfig{
		HTTPAddress:  strings.TrimSpace(configViper.GetString("http.address")),
		DatabasePath: strings.TrimSpace(configViper.GetString("database.path")),
		BusyTimeout:  time.Duration(busyTimeoutMS) * time.Millisecond,
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.BusyTimeout <= 0 {
		return fmt.Errorf("database.busy_timeout_ms must be positive")
	}
	if c.HTTPAddress == "" {
		return fmt.Errorf("http.address is required")
	}
	return nil
}
