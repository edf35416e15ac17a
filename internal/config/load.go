package config

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load loads the environment-backed configuration once.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig loads and validates the configuration.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini model must not be empty")
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini temperature out of range: %v", c.Gemini.Temperature)
	}
	switch c.Explain.LevelPolicy {
	case LevelPolicyStrict, LevelPolicyLenient:
	default:
		return fmt.Errorf("unknown level policy: %s", c.Explain.LevelPolicy)
	}
	return nil
}

// LogEnvStatus logs the effective environment configuration.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	envFilePresent := fileExists(".env")
	primaryKey := maskSecret(cfg.Gemini.PrimaryKey())
	logger.Debug(
		"env_status",
		"env_file", envFilePresent,
		"gemini_keys", len(cfg.Gemini.APIKeys),
		"primary_key", primaryKey,
		"model", cfg.Gemini.Model,
		"temperature", cfg.Gemini.Temperature,
		"timeout", cfg.Gemini.TimeoutSeconds,
		"level_policy", cfg.Explain.LevelPolicy,
		"auth_enabled", cfg.HTTPAuth.APIKey != "",
		"result_cache_url", cfg.ResultCache.URL,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Name,
	)

	if len(cfg.Gemini.APIKeys) == 0 {
		logger.Error("env_missing_google_api_key")
	}
	if cfg.HTTPAuth.APIKey == "" {
		logger.Warn("http_auth_disabled_dev_mode")
	}
}

func buildConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			APIKeys:         parseAPIKeys(),
			Model:           getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:     getEnvFloat("GEMINI_TEMPERATURE", 0.3),
			MaxOutputTokens: getEnvInt("GEMINI_MAX_TOKENS", 2048),
			MaxAttempts:     max(1, getEnvInt("GEMINI_MAX_ATTEMPTS", 2)),
			TimeoutSeconds:  getEnvInt("GEMINI_TIMEOUT", 30),
		},
		Explain: ExplainConfig{
			LevelPolicy:  LevelPolicy(getEnvString("EXPLAIN_LEVEL_POLICY", string(LevelPolicyStrict))),
			MaxTextRunes: getEnvNonNegativeInt("EXPLAIN_MAX_TEXT_RUNES", 20000),
		},
		ResultCache: ResultCacheConfig{
			URL:          getEnvString("RESULT_CACHE_URL", "redis://localhost:6379"),
			Enabled:      getEnvBool("RESULT_CACHE_ENABLED", false),
			Required:     getEnvBool("RESULT_CACHE_REQUIRED", false),
			DisableCache: getEnvBool("RESULT_CACHE_DISABLE_CLIENT_CACHE", false),
			TTLMinutes:   max(1, getEnvNonNegativeInt("RESULT_CACHE_TTL_MINUTES", 60)),
			MemoryMax:    max(1, getEnvNonNegativeInt("RESULT_CACHE_MEMORY_MAX", 1000)),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 1),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:         getEnvString("HTTP_HOST", "127.0.0.1"),
			Port:         getEnvInt("HTTP_PORT", 40311),
			HTTP2Enabled: getEnvBool("HTTP2_ENABLED", true),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey: cmp.Or(getEnvString("HTTP_API_KEY", ""), getEnvString("INTERNAL_API_KEY", "")),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
		Database: DatabaseConfig{
			Host:                                 getEnvString("DB_HOST", "localhost"),
			Port:                                 getEnvInt("DB_PORT", 5432),
			Name:                                 getEnvString("DB_NAME", "explainify"),
			User:                                 getEnvString("DB_USER", "explainify"),
			Password:                             getEnvString("DB_PASSWORD", ""),
			MinPool:                              getEnvInt("DB_MIN_POOL", 1),
			MaxPool:                              getEnvInt("DB_MAX_POOL", 5),
			ConnMaxLifetimeMinutes:               getEnvNonNegativeInt("DB_CONN_MAX_LIFETIME_MINUTES", 30),
			ConnMaxIdleTimeMinutes:               getEnvNonNegativeInt("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
			UsageEnabled:                         getEnvBool("DB_USAGE_ENABLED", false),
			UsageBatchEnabled:                    getEnvBool("DB_USAGE_BATCH_ENABLED", false),
			UsageBatchFlushIntervalSeconds:       max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_INTERVAL_SECONDS", 1)),
			UsageBatchFlushTimeoutSeconds:        getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_TIMEOUT_SECONDS", 5),
			UsageBatchMaxPendingRequests:         max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_PENDING_REQUESTS", 50)),
			UsageBatchMaxBackoffSeconds:          getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_BACKOFF_SECONDS", 60),
			UsageBatchErrorLogMaxIntervalSeconds: getEnvNonNegativeInt("DB_USAGE_BATCH_ERROR_LOG_MAX_INTERVAL_SECONDS", 60),
		},
	}
}
