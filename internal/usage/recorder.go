package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/explainify/explainify-server-go/internal/config"
)

// Recorder records per-request token usage, either directly or through
// the batch flusher.
type Recorder struct {
	repo    *Repository
	batcher *batcher
	logger  *slog.Logger
}

// NewRecorder creates a Recorder, starting the batch flusher when enabled.
func NewRecorder(cfg *config.Config, repo *Repository, logger *slog.Logger) *Recorder {
	recorder := &Recorder{
		repo:   repo,
		logger: logger,
	}

	if cfg != nil && cfg.Database.UsageBatchEnabled {
		recorder.batcher = newBatcher(cfg, repo, logger)
		recorder.batcher.start()
		if logger != nil {
			logger.Info(
				"usage_db_batch_enabled",
				"flush_interval_seconds", cfg.Database.UsageBatchFlushIntervalSeconds,
				"flush_timeout_seconds", cfg.Database.UsageBatchFlushTimeoutSeconds,
				"max_pending_requests", cfg.Database.UsageBatchMaxPendingRequests,
				"max_backoff_seconds", cfg.Database.UsageBatchMaxBackoffSeconds,
			)
		}
	}

	return recorder
}

// Record records the token usage of one request.
func (r *Recorder) Record(ctx context.Context, inputTokens int64, outputTokens int64, reasoningTokens int64) {
	if r == nil || r.repo == nil {
		return
	}
	if inputTokens <= 0 && outputTokens <= 0 {
		return
	}

	if r.batcher != nil {
		r.batcher.add(inputTokens, outputTokens, reasoningTokens, 1)
		return
	}

	if err := r.repo.RecordUsage(ctx, inputTokens, outputTokens, reasoningTokens, 1, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("usage_db_save_failed", "err", err)
		}
	}
}

// Close stops the batch flusher.
func (r *Recorder) Close() {
	if r == nil || r.batcher == nil {
		return
	}
	r.batcher.stop()
}
