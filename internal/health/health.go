package health

import (
	"context"
	"time"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/resultcache"
	"github.com/explainify/explainify-server-go/internal/usage"
)

var startTime = time.Now()

// Component is one health status entry.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response is the health endpoint body.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Collect gathers the health status. Shallow checks only inspect
// configuration; deep checks also probe the cache and database.
func Collect(ctx context.Context, cfg *config.Config, deepChecks bool) Response {
	if ctx == nil {
		ctx = context.Background()
	}

	components := map[string]Component{
		"app":          buildAppStatus(),
		"gemini":       buildGeminiStatus(cfg),
		"result_cache": buildResultCacheStatus(ctx, cfg, deepChecks),
		"database":     buildDatabaseStatus(ctx, cfg, deepChecks),
	}

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	return Response{
		Status:     overall,
		Components: components,
	}
}

func buildAppStatus() Component {
	return Component{
		Status: "ok",
		Detail: map[string]any{
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		},
	}
}

func buildGeminiStatus(cfg *config.Config) Component {
	apiKeyPresent := false
	model := ""
	timeoutSeconds := 0
	maxAttempts := 0

	if cfg != nil {
		apiKeyPresent = cfg.Gemini.PrimaryKey() != ""
		model = cfg.Gemini.Model
		timeoutSeconds = cfg.Gemini.TimeoutSeconds
		maxAttempts = cfg.Gemini.MaxAttempts
	}
	status := "ok"
	if !apiKeyPresent {
		status = "degraded"
	}

	return Component{
		Status: status,
		Detail: map[string]any{
			"api_key_present": apiKeyPresent,
			"model":           model,
			"timeout_seconds": timeoutSeconds,
			"max_attempts":    maxAttempts,
		},
	}
}

func buildResultCacheStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	enabled := false
	cacheURL := ""
	ttlMinutes := 0
	connected := false
	backend := "memory"
	checkErr := ""

	if cfg != nil {
		enabled = cfg.ResultCache.Enabled
		cacheURL = cfg.ResultCache.URL
		ttlMinutes = cfg.ResultCache.TTLMinutes
	}

	if enabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		cache, err := resultcache.NewCache(cfg)
		if err != nil {
			checkErr = err.Error()
		} else {
			defer cache.Close()
			if err := cache.Ping(checkCtx); err != nil {
				checkErr = err.Error()
			} else {
				connected = true
				backend = "valkey"
			}
		}
	}

	status := "ok"
	if enabled && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"enabled":      enabled,
		"connected":    connected,
		"backend":      backend,
		"url":          cacheURL,
		"ttl_minutes":  ttlMinutes,
		"deep_checked": deepChecks,
	}
	if checkErr != "" {
		detail["error"] = checkErr
	}

	return Component{
		Status: status,
		Detail: detail,
	}
}

func buildDatabaseStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	usageEnabled := false
	host := ""
	name := ""
	connected := false
	checkErr := ""

	if cfg != nil {
		usageEnabled = cfg.Database.UsageEnabled
		host = cfg.Database.Host
		name = cfg.Database.Name
	}

	if usageEnabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		repo := usage.NewRepository(cfg, nil)
		defer repo.Close()
		if _, err := repo.GetDailyUsage(checkCtx, time.Time{}); err != nil {
			checkErr = err.Error()
		} else {
			connected = true
		}
	}

	status := "ok"
	if usageEnabled && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"usage_enabled": usageEnabled,
		"connected":     connected,
		"host":          host,
		"name":          name,
		"deep_checked":  deepChecks,
	}
	if checkErr != "" {
		detail["error"] = checkErr
	}

	return Component{
		Status: status,
		Detail: detail,
	}
}
