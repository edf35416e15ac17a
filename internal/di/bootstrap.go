package di

import (
	"fmt"

	"github.com/explainify/explainify-server-go/internal/config"
	explaindomain "github.com/explainify/explainify-server-go/internal/domain/explain"
	"github.com/explainify/explainify-server-go/internal/gemini"
	"github.com/explainify/explainify-server-go/internal/handler"
	"github.com/explainify/explainify-server-go/internal/metrics"
	"github.com/explainify/explainify-server-go/internal/resultcache"
	"github.com/explainify/explainify-server-go/internal/server"
	"github.com/explainify/explainify-server-go/internal/usage"
	explainuc "github.com/explainify/explainify-server-go/internal/usecase/explain"
)

// InitializeApp wires the application dependencies.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	metricsStore := metrics.NewStore()

	usageRepository := usage.NewRepository(cfg, logger)
	usageRecorder := usage.NewRecorder(cfg, usageRepository, logger)

	geminiClient, err := gemini.NewClient(cfg, metricsStore, usageRecorder)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	prompts, err := explaindomain.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("explain prompts: %w", err)
	}

	cache, err := resultcache.NewCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("result cache: %w", err)
	}

	explainService := explainuc.New(cfg, geminiClient, prompts, cache, logger)
	explainHandler := handler.NewExplainHandler(cfg, explainService, metricsStore, usageRepository, logger)

	router := handler.NewRouter(cfg, logger, explainHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg, cache, usageRepository, usageRecorder), nil
}
