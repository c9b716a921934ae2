// Package config loads server settings from defaults, an optional YAML file
// and TRIP_-prefixed environment variables, in increasing precedence.
//
//	port: 8080
//	db_path: data/trips.db
//	jwt_secret: ...            # TRIP_JWT_SECRET
//	weather:
//	  api_key: ...             # TRIP_WEATHER_API_KEY
//	  cache_ttl: 30m
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TRIP"

// minSecretLength matches the check in auth.NewTokenService.
const minSecretLength = 16

type Config struct {
	Port          int           `mapstructure:"port"`
	DBPath        string        `mapstructure:"db_path"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	LogLevel      string        `mapstructure:"log_level"`
	GitHub        GitHubConfig  `mapstructure:"github"`
	Weather       WeatherConfig `mapstructure:"weather"`
}

// GitHubConfig enables GitHub sign-in when both client fields are set.
type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type WeatherConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	DefaultLocation string        `mapstructure:"default_location"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/trips.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("github.client_id", "")
	v.SetDefault("github.client_secret", "")
	v.SetDefault("github.callback_url", "http://localhost:8080/auth/github/callback")

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("weather.cache_ttl", 30*time.Minute)
	v.SetDefault("weather.default_location", "London")
}

// Load builds a Config. configFile may be empty, in which case only defaults
// and the environment are used. A named file that cannot be read is an error.
//
// Nested keys map to environment variables with dots replaced by
// underscores: weather.api_key is TRIP_WEATHER_API_KEY.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters (set %s_JWT_SECRET)", minSecretLength, envPrefix))
	}
	if c.GitHub.Enabled() && c.GitHub.CallbackURL == "" {
		errs = append(errs, errors.New("github.callback_url is required when GitHub sign-in is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
