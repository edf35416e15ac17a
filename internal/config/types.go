package config

import (
	"net"
	"net/url"
	"strconv"
)

// GeminiConfig is the completion service configuration.
type GeminiConfig struct {
	APIKeys         []string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	MaxAttempts     int
	TimeoutSeconds  int
}

// PrimaryKey returns the first configured API key.
func (g GeminiConfig) PrimaryKey() string {
	if len(g.APIKeys) == 0 {
		return ""
	}
	return g.APIKeys[0]
}

// LevelPolicy selects how an unrecognized complexity level is handled.
type LevelPolicy string

const (
	// LevelPolicyStrict rejects unrecognized levels with a validation error.
	LevelPolicyStrict LevelPolicy = "strict"
	// LevelPolicyLenient substitutes the default level instead of erroring.
	LevelPolicyLenient LevelPolicy = "lenient"
)

// ExplainConfig holds the explain pipeline settings.
type ExplainConfig struct {
	LevelPolicy  LevelPolicy
	MaxTextRunes int
}

// ResultCacheConfig is the explanation cache connection config.
type ResultCacheConfig struct {
	URL          string
	Enabled      bool
	Required     bool
	DisableCache bool
	TTLMinutes   int
	MemoryMax    int
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
}

// HTTPAuthConfig holds the API key auth settings.
// An empty APIKey disables auth entirely (dev mode).
type HTTPAuthConfig struct {
	APIKey string
}

// HTTPRateLimitConfig holds the request limit settings.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// DatabaseConfig holds the usage DB connection and batching settings.
type DatabaseConfig struct {
	Host                                 string
	Port                                 int
	Name                                 string
	User                                 string
	Password                             string
	MinPool                              int
	MaxPool                              int
	ConnMaxLifetimeMinutes               int
	ConnMaxIdleTimeMinutes               int
	UsageEnabled                         bool
	UsageBatchEnabled                    bool
	UsageBatchFlushIntervalSeconds       int
	UsageBatchFlushTimeoutSeconds        int
	UsageBatchMaxPendingRequests         int
	UsageBatchMaxBackoffSeconds          int
	UsageBatchErrorLogMaxIntervalSeconds int
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	host := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	} else {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Config is the full application configuration.
type Config struct {
	Gemini        GeminiConfig
	Explain       ExplainConfig
	ResultCache   ResultCacheConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	Database      DatabaseConfig
}
