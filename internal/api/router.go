package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dropbuddy/dropbuddy/internal/app"
	iauth "github.com/dropbuddy/dropbuddy/internal/auth"
	"github.com/dropbuddy/dropbuddy/internal/docs"
	"github.com/dropbuddy/dropbuddy/internal/handlers"
	"github.com/dropbuddy/dropbuddy/internal/middleware"
)

// Deps bundles the dependencies required to build the router.
type Deps struct {
	DB        *gorm.DB
	JWT       *iauth.JWTService
	Sessions  *iauth.SessionService
	Config    *app.Config
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	cfg := deps.Config

	r := gin.New()

	// Global middleware; ordering matters so that panics are caught first and
	// every log line carries a request id.
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSWithConfig(cfg.CORS.MiddlewareConfig()))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.RateStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))
	}

	// Public endpoints
	r.GET("/", handlers.Hello())
	r.GET("/health", handlers.Health(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Interactive documentation is only exposed in debug mode.
	if cfg.Logging.DebugEnabled() {
		r.GET("/docs", docs.UIHandler())
		r.GET("/docs/openapi.json", docs.SpecHandler())
	}

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT, deps.Sessions)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Protected routes
	requireAuth := middleware.Auth(deps.JWT)

	protected := v1.Group("")
	protected.Use(requireAuth)

	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)

	sessions := protected.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.POST("/revoke/:id", sessionHandler.Revoke)
		sessions.POST("/revoke_all", sessionHandler.RevokeAll)
	}

	// Unknown routes return the JSON envelope instead of the default body.
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
