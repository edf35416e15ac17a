package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/httperror"
	"github.com/explainify/explainify-server-go/internal/metrics"
	"github.com/explainify/explainify-server-go/internal/middleware"
	"github.com/explainify/explainify-server-go/internal/usage"
	explainuc "github.com/explainify/explainify-server-go/internal/usecase/explain"
)

// ExplainRequest is the explain request body.
type ExplainRequest struct {
	Text  string `json:"text" binding:"required"`
	Level string `json:"level"`
}

// ExplainResponse is the explain response body.
type ExplainResponse struct {
	Level       string   `json:"level"`
	Summary     string   `json:"summary"`
	Explanation string   `json:"explanation"`
	KeyPoints   []string `json:"key_points"`
	Model       string   `json:"model,omitempty"`
	Cached      bool     `json:"cached,omitempty"`
}

// DailyUsageResponse is one day of token usage.
type DailyUsageResponse struct {
	UsageDate       string `json:"usage_date"`
	InputTokens     int64  `json:"input_tokens"`
	OutputTokens    int64  `json:"output_tokens"`
	TotalTokens     int64  `json:"total_tokens"`
	ReasoningTokens int64  `json:"reasoning_tokens"`
	RequestCount    int64  `json:"request_count"`
	Model           string `json:"model"`
}

// UsageListResponse is the recent usage listing.
type UsageListResponse struct {
	Usages            []DailyUsageResponse `json:"usages"`
	TotalInputTokens  int64                `json:"total_input_tokens"`
	TotalOutputTokens int64                `json:"total_output_tokens"`
	TotalTokens       int64                `json:"total_tokens"`
	TotalRequestCount int64                `json:"total_request_count"`
	Model             string               `json:"model"`
}

// UsageResponse is the aggregated usage body.
type UsageResponse struct {
	InputTokens     int64  `json:"input_tokens"`
	OutputTokens    int64  `json:"output_tokens"`
	TotalTokens     int64  `json:"total_tokens"`
	ReasoningTokens int64  `json:"reasoning_tokens"`
	Model           string `json:"model"`
}

// ExplainHandler serves the explain API.
type ExplainHandler struct {
	cfg       *config.Config
	service   *explainuc.Service
	metrics   *metrics.Store
	usageRepo *usage.Repository
	logger    *slog.Logger
}

// NewExplainHandler creates the explain handler.
func NewExplainHandler(
	cfg *config.Config,
	service *explainuc.Service,
	metricsStore *metrics.Store,
	usageRepo *usage.Repository,
	logger *slog.Logger,
) *ExplainHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExplainHandler{
		cfg:       cfg,
		service:   service,
		metrics:   metricsStore,
		usageRepo: usageRepo,
		logger:    logger,
	}
}

// RegisterRoutes registers the explain routes.
func (h *ExplainHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/explain")
	group.POST("", h.handleExplain)
	group.GET("/usage", h.handleUsage)
	group.GET("/usage/total", h.handleUsageTotal)
	group.GET("/metrics", h.handleMetrics)
}

func (h *ExplainHandler) handleExplain(c *gin.Context) {
	var req ExplainRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Explain(c.Request.Context(), middleware.GetRequestID(c), explainuc.Request{
		Text:  req.Text,
		Level: req.Level,
	})
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExplainResponse{
		Level:       string(result.Level),
		Summary:     result.Document.Summary,
		Explanation: result.Document.Explanation,
		KeyPoints:   result.Document.KeyPoints,
		Model:       result.Model,
		Cached:      result.CacheHit,
	})
}

func (h *ExplainHandler) handleUsage(c *gin.Context) {
	days, ok := parseDays(c, 7)
	if !ok {
		return
	}

	usages, err := h.usageRepo.GetRecentUsage(c.Request.Context(), days)
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.buildUsageListResponse(usages))
}

func (h *ExplainHandler) handleUsageTotal(c *gin.Context) {
	days, ok := parseDays(c, 30)
	if !ok {
		return
	}

	usageRow, err := h.usageRepo.GetTotalUsage(c.Request.Context(), days)
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UsageResponse{
		InputTokens:     usageRow.InputTokens,
		OutputTokens:    usageRow.OutputTokens,
		TotalTokens:     usageRow.TotalTokens(),
		ReasoningTokens: usageRow.ReasoningTokens,
		Model:           h.cfg.Gemini.Model,
	})
}

func (h *ExplainHandler) handleMetrics(c *gin.Context) {
	if h.metrics == nil {
		writeError(c, httperror.NewInternalError("metrics store not configured"))
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func (h *ExplainHandler) buildUsageListResponse(usages []usage.DailyUsage) UsageListResponse {
	model := h.cfg.Gemini.Model
	response := UsageListResponse{
		Usages: make([]DailyUsageResponse, 0, len(usages)),
		Model:  model,
	}

	for _, row := range usages {
		response.Usages = append(response.Usages, DailyUsageResponse{
			UsageDate:       row.UsageDate.Format(time.DateOnly),
			InputTokens:     row.InputTokens,
			OutputTokens:    row.OutputTokens,
			TotalTokens:     row.TotalTokens(),
			ReasoningTokens: row.ReasoningTokens,
			RequestCount:    row.RequestCount,
			Model:           model,
		})
		response.TotalInputTokens += row.InputTokens
		response.TotalOutputTokens += row.OutputTokens
		response.TotalTokens += row.TotalTokens()
		response.TotalRequestCount += row.RequestCount
	}

	return response
}

func parseDays(c *gin.Context, defaultDays int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		writeError(c, httperror.NewInvalidInput("days must be a positive integer"))
		return 0, false
	}
	return parsed, true
}

func (h *ExplainHandler) logError(err error) {
	if err == nil {
		return
	}
	h.logger.Warn("explain_request_failed", "err", err)
}
