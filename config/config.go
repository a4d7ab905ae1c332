// Package config loads server configuration from defaults, an optional file
// and CHARGES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/warp/charge-engine/charge"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Calc     CalcConfig
	Log      LogConfig
	CORS     CORSConfig
	Catalog  CatalogConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds sqlite settings. ":memory:" keeps nothing on disk.
type DatabaseConfig struct {
	Path string
}

// CalcConfig holds calculator defaults.
type CalcConfig struct {
	// DefaultPrecision applies when a request does not name one.
	DefaultPrecision int `mapstructure:"default_precision"`
}

// LogConfig holds logger settings. Format is "json" or "console".
type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig holds cross-origin settings for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig controls catalog bootstrapping.
type CatalogConfig struct {
	// SeedPresets saves the preset charge definitions missing from the catalog.
	SeedPresets bool `mapstructure:"seed_presets"`
}

// EnvPrefix is the prefix of environment overrides, e.g. CHARGES_SERVER_PORT.
const EnvPrefix = "CHARGES"

// Load reads configuration. path may be empty; a named file that cannot be
// read is an error.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("database.path", "charges.db")
	v.SetDefault("calc.default_precision", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("catalog.seed_presets", true)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks ranges viper cannot express.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if err := charge.CheckPrecision(c.Calc.DefaultPrecision); err != nil {
		return fmt.Errorf("%w: calc.default_precision: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q, want json or console", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
