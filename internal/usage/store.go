package usage

import (
	"context"
	"time"
)

// Store is the usage persistence interface. Handlers depend on this so
// tests can inject an in-memory implementation.
type Store interface {
	RecordUsage(
		ctx context.Context,
		inputTokens int64,
		outputTokens int64,
		reasoningTokens int64,
		requestCount int64,
		usageDate time.Time,
	) error

	GetDailyUsage(ctx context.Context, usageDate time.Time) (*DailyUsage, error)

	GetRecentUsage(ctx context.Context, days int) ([]DailyUsage, error)

	GetTotalUsage(ctx context.Context, days int) (DailyUsage, error)

	Close()
}

var _ Store = (*Repository)(nil)
