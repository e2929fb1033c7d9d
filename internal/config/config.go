// Package config loads the ytinfo binary settings from defaults, an optional
// YAML file, YTINFO_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/ytinfo/internal/logger"
)

const (
	// AppName names the config file and the env prefix.
	AppName = "ytinfo"
	// EnvPrefix is prepended to environment variable names.
	EnvPrefix = "YTINFO"
)

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config is the resolved configuration.
type Config struct {
	Language string
	HTTP     HTTP
	Server   Server
	Cache    Cache
	Log      logger.LogConfig
}

// HTTP holds upstream client settings.
type HTTP struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	Proxy     string
}

// Server holds HTTP server settings.
type Server struct {
	Addr string
}

// Cache holds the player script store settings.
type Cache struct {
	Dir string
	TTL time.Duration
}

// New creates a viper instance with defaults and environment bindings and
// reads the config file. An explicit file must exist; otherwise ytinfo.yaml
// is looked up in the working directory and the user config directory.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for name, field := range Default {
		v.SetDefault(name, field.Value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}
	return v, nil
}

// From reads the typed configuration out of v.
func From(v *viper.Viper) Config {
	return Config{
		Language: v.GetString(KeyLanguage),
		HTTP: HTTP{
			Timeout:   v.GetDuration(KeyHTTPTimeout),
			Retries:   v.GetInt(KeyHTTPRetries),
			UserAgent: v.GetString(KeyHTTPUserAgent),
			Proxy:     v.GetString(KeyHTTPProxy),
		},
		Server: Server{
			Addr: v.GetString(KeyServerAddr),
		},
		Cache: Cache{
			Dir: v.GetString(KeyCacheDir),
			TTL: v.GetDuration(KeyCacheTTL),
		},
		Log: logger.LogConfig{
			Level:      v.GetString(KeyLogLevel),
			Format:     v.GetString(KeyLogFormat),
			Output:     v.GetString(KeyLogOutput),
			Components: logger.ParseComponents(v.GetString(KeyLogComponents)),
			ShowCaller: v.GetBool(KeyLogCaller),
			Timestamp:  v.GetBool(KeyLogTimestamp),
		},
	}
}

// Logger builds the process logger from the log section.
func (c Config) Logger() (*logger.Logger, error) {
	if err := c.Log.ValidateConfig(); err != nil {
		return nil, err
	}
	return logger.CreateLoggerFromConfig(&c.Log)
}
