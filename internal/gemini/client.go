package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/llm"
	"github.com/explainify/explainify-server-go/internal/metrics"
	"github.com/explainify/explainify-server-go/internal/usage"
)

var (
	// ErrMissingAPIKey is returned when no Gemini API key is configured.
	ErrMissingAPIKey = errors.New("missing gemini api key")
	// ErrInvalidModel is returned when no model can be resolved.
	ErrInvalidModel = errors.New("invalid model")
)

// Request is one completion request. System is the constant instruction,
// User the per-request prompt. Model overrides the configured default when
// non-empty.
type Request struct {
	System string
	User   string
	Model  string
}

// Client calls the Gemini API with key rotation and bounded retries.
type Client struct {
	cfg           *config.Config
	metrics       *metrics.Store
	usageRecorder *usage.Recorder
	mu            sync.Mutex
	clients       map[string]*genai.Client
	apiKeys       []string
	apiKeyIdx     int
}

// NewClient creates a Gemini client.
func NewClient(cfg *config.Config, metricsStore *metrics.Store, usageRecorder *usage.Recorder) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if metricsStore == nil {
		return nil, errors.New("metrics store is nil")
	}
	return &Client{
		cfg:           cfg,
		metrics:       metricsStore,
		usageRecorder: usageRecorder,
		clients:       make(map[string]*genai.Client),
		apiKeys:       cfg.Gemini.APIKeys,
	}, nil
}

// Chat performs one completion call. Transient upstream failures (429, 5xx)
// are retried up to the configured attempt limit; other failures surface
// immediately.
func (c *Client) Chat(ctx context.Context, req Request) (llm.ChatResult, string, error) {
	start := time.Now()
	response, model, err := c.generate(ctx, req)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return llm.ChatResult{}, model, err
	}

	tokenUsage := extractUsage(response)
	c.metrics.RecordSuccess(time.Since(start), tokenUsage)
	c.recordUsage(ctx, tokenUsage)
	return llm.ChatResult{Text: response.Text(), Usage: tokenUsage}, model, nil
}

func (c *Client) recordUsage(ctx context.Context, tokenUsage llm.Usage) {
	if c.usageRecorder == nil {
		return
	}
	c.usageRecorder.Record(ctx, int64(tokenUsage.InputTokens), int64(tokenUsage.OutputTokens), int64(tokenUsage.ReasoningTokens))
}

func (c *Client) generate(ctx context.Context, req Request) (*genai.GenerateContentResponse, string, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Gemini.Model
	}
	if model == "" {
		return nil, "", ErrInvalidModel
	}

	generateConfig := c.buildGenerateConfig(req.System)
	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	operation := func() (*genai.GenerateContentResponse, error) {
		client, err := c.selectClient(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		response, err := client.Models.GenerateContent(ctx, model, contents, generateConfig)
		if err != nil {
			if isTransient(err) {
				return nil, fmt.Errorf("generate content: %w", err)
			}
			return nil, backoff.Permanent(fmt.Errorf("generate content: %w", err))
		}
		return response, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.Gemini.MaxAttempts-1)),
		ctx,
	)
	response, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, model, err
	}
	return response, model, nil
}

func (c *Client) selectClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.apiKeys) == 0 {
		return nil, ErrMissingAPIKey
	}

	key := c.apiKeys[c.apiKeyIdx%len(c.apiKeys)]
	c.apiKeyIdx++
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	timeout := time.Duration(c.cfg.Gemini.TimeoutSeconds) * time.Second
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

func (c *Client) buildGenerateConfig(system string) *genai.GenerateContentConfig {
	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Gemini.Temperature)),
		MaxOutputTokens: int32(c.cfg.Gemini.MaxOutputTokens),
	}
	if system != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return generateConfig
}

// isTransient reports whether an upstream failure is worth one more attempt:
// rate limiting or a server-side error.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return transientCode(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return transientCode(apiErrPtr.Code)
	}
	return false
}

func transientCode(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func extractUsage(response *genai.GenerateContentResponse) llm.Usage {
	if response == nil || response.UsageMetadata == nil {
		return llm.Usage{}
	}
	meta := response.UsageMetadata
	return llm.Usage{
		InputTokens:     int(meta.PromptTokenCount),
		OutputTokens:    int(meta.CandidatesTokenCount) + int(meta.ThoughtsTokenCount),
		TotalTokens:     int(meta.TotalTokenCount),
		ReasoningTokens: int(meta.ThoughtsTokenCount),
	}
}
