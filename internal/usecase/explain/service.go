package explain

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/explainify/explainify-server-go/internal/config"
	explaindomain "github.com/explainify/explainify-server-go/internal/domain/explain"
	"github.com/explainify/explainify-server-go/internal/gemini"
	"github.com/explainify/explainify-server-go/internal/httperror"
	"github.com/explainify/explainify-server-go/internal/resultcache"
)

// Service implements the explain pipeline: validate, prompt, call the
// model, parse the reply into the structured document.
type Service struct {
	cfg     *config.Config
	client  gemini.LLM
	prompts *explaindomain.Prompts
	cache   *resultcache.Cache
	logger  *slog.Logger
	group   singleflight.Group
}

// New creates an explain service.
func New(
	cfg *config.Config,
	client gemini.LLM,
	prompts *explaindomain.Prompts,
	cache *resultcache.Cache,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		client:  client,
		prompts: prompts,
		cache:   cache,
		logger:  logger,
	}
}

// Request is one explain request. Level is the raw requested level and may
// be empty.
type Request struct {
	Text  string
	Level string
}

// Result is one completed explanation.
type Result struct {
	Level    explaindomain.Level
	Document explaindomain.Document
	Model    string
	CacheHit bool
}

// Explain runs the pipeline for one request. Identical concurrent requests
// are collapsed into a single upstream call.
func (s *Service) Explain(ctx context.Context, requestID string, req Request) (Result, error) {
	if s == nil || s.client == nil || s.prompts == nil {
		return Result{}, httperror.NewInternalError("explain service not configured")
	}

	if strings.TrimSpace(req.Text) == "" {
		return Result{}, httperror.NewInvalidInput("Field 'text' must not be empty")
	}
	if maxRunes := s.cfg.Explain.MaxTextRunes; maxRunes > 0 && utf8.RuneCountInString(req.Text) > maxRunes {
		return Result{}, httperror.NewInvalidInput("Field 'text' exceeds the maximum length")
	}

	lenient := s.cfg.Explain.LevelPolicy == config.LevelPolicyLenient
	level, err := explaindomain.ParseLevel(req.Level, lenient)
	if err != nil {
		return Result{}, err
	}

	key := resultcache.Key(level, req.Text)
	if cached := s.lookupCache(ctx, key); cached != nil {
		s.logger.Debug("explain_cache_hit", "request_id", requestID, "level", level)
		return Result{
			Level:    level,
			Document: cached.Document,
			Model:    cached.Model,
			CacheHit: true,
		}, nil
	}

	value, err, shared := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, requestID, level, req.Text, key)
	})
	if err != nil {
		return Result{}, err
	}

	result := value.(Result)
	if shared {
		s.logger.Debug("explain_request_collapsed", "request_id", requestID, "level", level)
	}
	return result, nil
}

func (s *Service) generate(ctx context.Context, requestID string, level explaindomain.Level, text string, key string) (Result, error) {
	system, user, err := s.prompts.Build(level, text)
	if err != nil {
		s.logger.Error("explain_prompt_build_failed", "request_id", requestID, "err", err)
		return Result{}, httperror.NewInternalError("prompt build failed")
	}

	startedAt := time.Now()
	chatResult, model, err := s.client.Chat(ctx, gemini.Request{System: system, User: user})
	if err != nil {
		s.logger.Warn("explain_llm_failed", "request_id", requestID, "level", level, "err", err)
		return Result{}, err
	}

	document := explaindomain.ParseDocument(chatResult.Text)
	s.logger.Info(
		"explain_completed",
		"request_id", requestID,
		"level", level,
		"model", model,
		"latency", time.Since(startedAt),
		"input_tokens", chatResult.Usage.InputTokens,
		"output_tokens", chatResult.Usage.OutputTokens,
		"key_points", len(document.KeyPoints),
	)

	s.storeCache(ctx, key, resultcache.Entry{
		Level:    level,
		Document: document,
		Model:    model,
	})

	return Result{
		Level:    level,
		Document: document,
		Model:    model,
	}, nil
}

func (s *Service) lookupCache(ctx context.Context, key string) *resultcache.Entry {
	if s.cache == nil {
		return nil
	}
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("explain_cache_get_failed", "err", err)
		return nil
	}
	return entry
}

func (s *Service) storeCache(ctx context.Context, key string, entry resultcache.Entry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, entry); err != nil {
		s.logger.Warn("explain_cache_set_failed", "err", err)
	}
}
