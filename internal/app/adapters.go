package app

import (
	"github.com/dropbuddy/dropbuddy/internal/auth"
	"github.com/dropbuddy/dropbuddy/internal/cache"
	"github.com/dropbuddy/dropbuddy/internal/database"
	"github.com/dropbuddy/dropbuddy/internal/middleware"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.AccessTokenTTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.Secret,
		Issuer:         c.Issuer,
		AccessTokenTTL: ttl,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.RefreshTokenTTL
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTokenTTL
	}

	length := c.RefreshTokenLength
	if length <= 0 {
		length = 48
	}

	return auth.SessionConfig{
		RefreshTokenTTL: ttl,
		RefreshLength:   length,
	}
}

// DatabaseOpenConfig converts DatabaseConfig into the database package representation.
func (c DatabaseConfig) DatabaseOpenConfig() database.Config {
	return database.Config{
		URL:            c.URL,
		MaxConnections: c.MaxConnections,
		PoolTimeout:    c.PoolTimeout,
	}
}

// RedisClientConfig parses the configured Redis URL into client parameters.
func (c RedisConfig) RedisClientConfig() (cache.RedisConfig, error) {
	cfg, err := cache.ParseRedisURL(c.URL)
	if err != nil {
		return cache.RedisConfig{}, err
	}
	cfg.Timeout = c.Timeout
	return cfg, nil
}

// MiddlewareConfig converts the [cors] section into the middleware representation.
func (c CORSConfig) MiddlewareConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	}
}
