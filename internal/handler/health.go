package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/health"
)

// ModelConfigResponse describes the effective model configuration.
type ModelConfigResponse struct {
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxAttempts    int     `json:"max_attempts"`
	LevelPolicy    string  `json:"level_policy"`
	HTTP2Enabled   bool    `json:"http2_enabled"`
	TransportMode  string  `json:"transport_mode"`
}

// RegisterHealthRoutes registers the health and metrics routes.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness stays shallow so cache or DB outages do not restart the pod.
		payload := health.Collect(c.Request.Context(), cfg, false)
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := health.Collect(c.Request.Context(), cfg, true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health/models", func(c *gin.Context) {
		transportMode := "h1"
		if cfg.HTTP.HTTP2Enabled {
			transportMode = "h2c"
		}

		c.JSON(http.StatusOK, ModelConfigResponse{
			Model:          cfg.Gemini.Model,
			Temperature:    cfg.Gemini.Temperature,
			TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
			MaxAttempts:    cfg.Gemini.MaxAttempts,
			LevelPolicy:    string(cfg.Explain.LevelPolicy),
			HTTP2Enabled:   cfg.HTTP.HTTP2Enabled,
			TransportMode:  transportMode,
		})
	})
}
