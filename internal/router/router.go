package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/handler"
	"github.com/noah-isme/campus-fleet-api/internal/middleware"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	"github.com/noah-isme/campus-fleet-api/internal/service"
	"github.com/noah-isme/campus-fleet-api/pkg/config"
	"github.com/noah-isme/campus-fleet-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-fleet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-fleet-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Buses      *handler.BusHandler
	Tracking   *handler.TrackingHandler
	Drivers    *handler.PersonnelHandler
	Conductors *handler.PersonnelHandler
	Routes     *handler.RouteHandler
	Metrics    *handler.MetricsHandler
}

// Dependencies are the shared pieces the middleware chain needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Tokens  middleware.TokenValidator
}

// New builds the gin engine with the full fleet API mounted under the
// configured prefix.
func New(deps Dependencies, h Handlers) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	crew := middleware.RequireRoles(models.RoleAdmin, models.RoleConductor)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleDriver, models.RoleConductor)

	api := r.Group(deps.Config.APIPrefix)
	api.Use(middleware.JWT(deps.Tokens))

	buses := api.Group("/buses")
	buses.GET("", anyRole, h.Buses.List)
	buses.POST("", admin, h.Buses.Create)
	buses.POST("/assign-personnel", admin, h.Buses.AssignPersonnel)
	buses.GET("/:id", anyRole, h.Buses.Get)
	buses.PATCH("/:id", admin, h.Buses.Update)
	buses.DELETE("/:id", admin, h.Buses.Delete)
	buses.PATCH("/:id/driver", admin, h.Buses.AssignDriver)
	buses.PATCH("/:id/conductor", admin, h.Buses.AssignConductor)
	buses.PATCH("/:id/location", crew, h.Tracking.PushLocation)
	buses.POST("/:id/passengers/increment", crew, h.Tracking.Increment)
	buses.POST("/:id/passengers/decrement", crew, h.Tracking.Decrement)
	buses.GET("/:id/location-history", anyRole, h.Tracking.History)
	buses.GET("/:id/location-history/export", admin, h.Tracking.ExportHistory)

	mountPersonnel(api.Group("/drivers", admin), h.Drivers)
	mountPersonnel(api.Group("/conductors", admin), h.Conductors)

	routes := api.Group("/routes", anyRole)
	routes.GET("", h.Routes.List)
	routes.GET("/:id", h.Routes.Get)

	return r
}

func mountPersonnel(group *gin.RouterGroup, h *handler.PersonnelHandler) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
