// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nomad-directory/internal/api/middleware"
	"nomad-directory/internal/common/logger"
)

type RouterConfig struct {
	AllowedOrigins []string
	// MetricsHandler serves /metrics; nil mounts the default prometheus handler.
	MetricsHandler http.Handler
}

func NewRouter(h *Handler, cfg RouterConfig, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(log), gin.Recovery(), middleware.CORS(cfg.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", map[string]interface{}{"error": err.Error()})
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  errNoRoute.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	api := r.Group("/api")
	{
		api.POST("/search", h.Search)
		api.GET("/listings", h.ListListings)
		api.GET("/sort-options", h.SortOptions)
	}
	return r
}
