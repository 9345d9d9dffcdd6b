// Package config wraps viper so that plugins receive a scoped, nil-safe view
// of the process configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SENTINEL_SERVER_PORT overrides server.port.
const EnvPrefix = "SENTINEL"

// Config is a read-only view over a viper instance. The zero value and a
// Config built from a nil viper return zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil v yields an empty Config.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

func (c *Config) vp() *viper.Viper {
	if c == nil || c.v == nil {
		return viper.New()
	}
	return c.v
}

func (c *Config) GetString(key string) string          { return c.vp().GetString(key) }
func (c *Config) GetInt(key string) int                { return c.vp().GetInt(key) }
func (c *Config) GetFloat64(key string) float64        { return c.vp().GetFloat64(key) }
func (c *Config) GetBool(key string) bool              { return c.vp().GetBool(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.vp().GetDuration(key) }
func (c *Config) IsSet(key string) bool                { return c.vp().IsSet(key) }
func (c *Config) GetStringSlice(key string) []string   { return c.vp().GetStringSlice(key) }

// Sub returns the subtree rooted at key. It never returns nil; a missing
// subtree yields an empty Config.
func (c *Config) Sub(key string) *Config {
	return New(c.vp().Sub(key))
}

// Unmarshal decodes the whole tree into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	return c.vp().Unmarshal(target)
}

// Viper exposes the underlying instance for callers that need to set values,
// mainly tests.
func (c *Config) Viper() *viper.Viper { return c.vp() }

// SetDefaults registers the default value of every key the server reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("seed.enabled", true)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("llm.model", "gemini-3-flash-preview")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", "30s")

	v.SetDefault("plugins.inventory.enabled", true)
	v.SetDefault("plugins.telemetry.enabled", true)
	v.SetDefault("plugins.telemetry.interval", "5s")
	v.SetDefault("plugins.telemetry.max_jitter", 2)
	v.SetDefault("plugins.alerts.enabled", true)
	v.SetDefault("plugins.alerts.diagnosis_per_minute", 6)
	v.SetDefault("plugins.tickets.enabled", true)
	v.SetDefault("plugins.users.enabled", true)
	v.SetDefault("plugins.settings.enabled", true)
	v.SetDefault("plugins.dashboard.enabled", true)
}

// Load builds the process configuration. Values come from, in increasing
// precedence: defaults, the YAML file at path (optional), and SENTINEL_*
// environment variables. A .env file in the working directory is loaded
// into the environment first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The LLM credential is also accepted under its conventional bare name.
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sentinel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return New(v), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
