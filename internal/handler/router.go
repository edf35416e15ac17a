package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/middleware"
)

// NewRouter builds the HTTP router.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	explainHandler *ExplainHandler,
) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		middleware.APIKeyAuth(cfg),
		middleware.RateLimit(cfg),
		newGzipMiddleware(),
	)

	RegisterHealthRoutes(router, cfg)
	explainHandler.RegisterRoutes(router)

	return router
}

func newGzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithCustomShouldCompressFn(func(c *gin.Context) bool {
		// Health probes are tiny and polled often.
		return !strings.HasPrefix(c.Request.URL.Path, "/health")
	}))
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
