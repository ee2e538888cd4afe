package app

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Environment variables consulted directly, outside the APP_* override scheme.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvJWTSecret   = "JWT_SECRET"
	EnvRedisURL    = "REDIS_URL"
)

// Config represents the runtime configuration for the DropBuddy backend.
//
// Values are resolved in ascending precedence: built-in defaults, then
// config.toml, then APP_* environment variables, then the direct
// DATABASE_URL / JWT_SECRET / REDIS_URL variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig describes connection pool options. The connection URL itself
// always comes from the DATABASE_URL environment variable.
type DatabaseConfig struct {
	URL            string        `mapstructure:"-"`
	MaxConnections int           `mapstructure:"max_connections"`
	PoolTimeout    time.Duration `mapstructure:"pool_timeout"`
}

// LoggingConfig controls log output and the background log file cleanup task.
type LoggingConfig struct {
	Level     string           `mapstructure:"level"`
	Format    string           `mapstructure:"format"`
	Directory string           `mapstructure:"directory"`
	Cleanup   LogCleanupConfig `mapstructure:"cleanup"`
}

// DebugEnabled reports whether debug-only surfaces (such as /docs) are exposed.
func (c LoggingConfig) DebugEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(c.Level), "debug")
}

// LogCleanupConfig drives periodic removal of old log files.
type LogCleanupConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	MaxAge   time.Duration `mapstructure:"max_age"`
	Schedule string        `mapstructure:"schedule"`
}

// CORSConfig mirrors the [cors] section of config.toml.
type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	ExposedHeaders   []string      `mapstructure:"exposed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// RateLimitConfig drives the fixed-window request limiter.
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// AuthConfig captures token issuance settings. The signing secret always comes
// from the JWT_SECRET environment variable.
type AuthConfig struct {
	Secret             string        `mapstructure:"-"`
	Issuer             string        `mapstructure:"issuer"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshTokenLength int           `mapstructure:"refresh_token_length"`
}

// RedisConfig holds the optional Redis connection URL plus tuning knobs.
type RedisConfig struct {
	URL     string        `mapstructure:"-"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a Redis backend was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Additional search paths may be supplied; the working directory and ./config
// are always consulted.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("toml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// Secrets and connection URLs are taken from dedicated variables so that
	// they never have to live in config files.
	config.Database.URL = strings.TrimSpace(os.Getenv(EnvDatabaseURL))
	config.Auth.Secret = strings.TrimSpace(os.Getenv(EnvJWTSecret))
	config.Redis.URL = strings.TrimSpace(os.Getenv(EnvRedisURL))

	return &config, nil
}

// Validate checks required settings and cross-field invariants.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("config: required environment variable %s is not set", EnvDatabaseURL)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("config: required environment variable %s is not set", EnvJWTSecret)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	if err := c.CORS.MiddlewareConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.timeout", "30s")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.pool_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
	v.SetDefault("logging.directory", "./logs")
	v.SetDefault("logging.cleanup.enabled", true)
	v.SetDefault("logging.cleanup.max_age", "168h") // 7 days
	v.SetDefault("logging.cleanup.schedule", "@hourly")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.max_requests", 100)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("auth.issuer", "dropbuddy")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "720h") // 30 days
	v.SetDefault("auth.refresh_token_length", 48)

	v.SetDefault("redis.timeout", "5s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			numericSecondsHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// numericSecondsHookFunc interprets bare numbers as second counts when the
// target field is a duration, so `timeout = 30` and `timeout = "30s"` mean
// the same thing.
func numericSecondsHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		case reflect.String:
			if seconds, err := strconv.ParseFloat(data.(string), 64); err == nil {
				return time.Duration(seconds * float64(time.Second)), nil
			}
		}
		return data, nil
	}
}
