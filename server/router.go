package server

import (
	"time"

	"propgen/infrastructure/metrics"
	"propgen/infrastructure/realtime"
	httpHandler "propgen/interfaces/http"
	"propgen/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Extraction httpHandler.IExtractionHandler
	Content    httpHandler.IContentHandler
	Image      httpHandler.IImageHandler
	Publish    httpHandler.IPublishHandler
	OAuth      httpHandler.IOAuthHandler
	Profile    httpHandler.IProfileHandler
	Health     httpHandler.IHealthHandler
	Hub        *realtime.Hub
}

type RouterConfig struct {
	SecretKey      string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

func InitiateRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	httpHandler.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Observe(cfg.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", h.Health.Healthz)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/images/*key", h.Image.Serve)

	// get_auth_url needs the caller, the provider callback carries no bearer
	router.GET("/oauth/:provider", middleware.OptionalAuth(cfg.SecretKey), h.OAuth.Handle)

	api := router.Group("api")
	api.Use(middleware.Auth(cfg.SecretKey))

	api.POST("/extract", h.Extraction.Extract)
	api.POST("/social-content", h.Content.SocialContent)
	api.POST("/publish/:platform", h.Publish.Publish)
	api.GET("/events", h.Hub.Serve)

	api.GET("/profile", h.Profile.GetProfile)
	api.PUT("/profile", h.Profile.UpdateProfile)

	properties := api.Group("/properties")
	{
		properties.GET("", h.Profile.ListProperties)
		properties.GET("/:id", h.Profile.GetProperty)
		properties.POST("/:id/content", h.Content.GenerateAll)
		properties.PUT("/:id/captions", h.Content.UpdateCaptions)
		properties.POST("/:id/images", h.Image.Generate)
		properties.GET("/:id/publish-history", h.Publish.History)
	}

	return router
}
