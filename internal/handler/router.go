package handler

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/internal/middleware"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

// Server implements the generated ServerInterface by embedding the individual handlers
type Server struct {
	*ReminderHandler
	*DashboardHandler
	*SettingsHandler
	*MedicationHandler
	*ReportHandler
}

var _ api.ServerInterface = (*Server)(nil)

// RouterConfig configures NewRouter
type RouterConfig struct {
	Auth        middleware.AuthConfig
	CORSOrigins []string
	Release     bool
}

// NewRouter builds the gin engine: recovery, CORS, request id and logging
// middleware, the public health routes and the authenticated API.
func NewRouter(server *Server, health *HealthHandler, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	r.GET("/health", health.GetHealth)
	r.GET("/openapi.yaml", health.GetOpenAPI)

	authed := r.Group("", middleware.AuthMiddleware(cfg.Auth, logger))
	api.RegisterHandlersWithOptions(authed, server, api.GinServerOptions{
		ErrorHandler: func(c *gin.Context, err error, status int) {
			badRequest(c, logger, err)
		},
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.DevUserHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
