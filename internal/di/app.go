package di

import (
	"log/slog"
	"net/http"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/resultcache"
	"github.com/explainify/explainify-server-go/internal/usage"
)

// App bundles the application components.
type App struct {
	Server          *http.Server
	Logger          *slog.Logger
	Config          *config.Config
	ResultCache     *resultcache.Cache
	UsageRepository *usage.Repository
	UsageRecorder   *usage.Recorder
}

// NewApp creates an App.
func NewApp(
	server *http.Server,
	logger *slog.Logger,
	cfg *config.Config,
	cache *resultcache.Cache,
	usageRepository *usage.Repository,
	usageRecorder *usage.Recorder,
) *App {
	return &App{
		Server:          server,
		Logger:          logger,
		Config:          cfg,
		ResultCache:     cache,
		UsageRepository: usageRepository,
		UsageRecorder:   usageRecorder,
	}
}

// Close releases app resources.
func (a *App) Close() {
	if a.ResultCache != nil {
		a.ResultCache.Close()
	}
	if a.UsageRecorder != nil {
		a.UsageRecorder.Close()
	}
	if a.UsageRepository != nil {
		a.UsageRepository.Close()
	}
}
