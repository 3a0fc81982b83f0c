package recipe

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"recipe-assistant/internal/core/ai/queue"
	recipeService "recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/pkg/common"
	"recipe-assistant/internal/telemetry"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AskRequest 使用者的一則訊息
type AskRequest struct {
	Query string `json:"query" binding:"required,max=2000"`
}

// AskResponse 管線最終回應與請求 ID
type AskResponse struct {
	RequestID string `json:"request_id"`
	recipeService.FinalResponse
}

// ClassifyRequest 只分類不生成
type ClassifyRequest struct {
	Query string `json:"query" binding:"required,max=2000"`
}

// ClassifyResponse 分類結果與正規化後的請求
type ClassifyResponse struct {
	Category recipeService.Category `json:"category"`
	Matcher  string                 `json:"matcher"`
	Rule     string                 `json:"rule,omitempty"`
	Request  *recipeService.Request `json:"request,omitempty"`
}

// ValidateRequest 待檢查的候選食譜（markdown 或 JSON）
type ValidateRequest struct {
	Candidate string `json:"candidate" binding:"required"`
}

// ValidateResponse 解析後的候選食譜與檢查結果
type ValidateResponse struct {
	Candidate  *recipeService.CandidateRecipe `json:"candidate"`
	Validation recipeService.ValidationResult `json:"validation"`
	Rendered   string                         `json:"rendered"`
}

// Handler 食譜 API 處理器
type Handler struct {
	recipes *recipeService.Service
	queue   *queue.Manager
	metrics *telemetry.Metrics
}

// NewHandler 建立食譜 API 處理器
func NewHandler(recipes *recipeService.Service, q *queue.Manager, metrics *telemetry.Metrics) *Handler {
	return &Handler{recipes: recipes, queue: q, metrics: metrics}
}

// HandleAsk 經由隊列執行完整管線
func (h *Handler) HandleAsk(c *gin.Context) {
	requestID := requestIDFrom(c)

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestID))
		respondError(c, common.ErrInvalidRequest, "query is required and must be at most 2000 characters")
		return
	}

	v, err := h.queue.Submit(c.Request.Context(), requestID, req.Query)
	if err != nil {
		h.handleQueueError(c, requestID, err)
		return
	}
	resp, ok := v.(recipeService.FinalResponse)
	if !ok {
		common.LogError("隊列回傳型別錯誤", zap.String("request_id", requestID))
		respondError(c, common.ErrInternalError, "")
		return
	}

	status := http.StatusOK
	if resp.Status == recipeService.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}

	if wantsMarkdown(c) {
		c.Header("X-Request-ID", requestID)
		c.Data(status, "text/markdown; charset=utf-8", []byte(resp.Text))
		return
	}
	c.JSON(status, AskResponse{RequestID: requestID, FinalResponse: resp})
}

func (h *Handler) handleQueueError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, common.ErrQueueFull):
		h.metrics.IncQueueRejection()
		common.LogWarn("隊列已滿，拒絕請求", zap.String("request_id", requestID))
		c.Header("Retry-After", "5")
		respondError(c, common.ErrQueueFull, "")
	case errors.Is(err, common.ErrQueueClosed):
		respondError(c, common.ErrServiceUnavailable, "")
	case errors.Is(err, context.DeadlineExceeded):
		common.LogWarn("請求逾時", zap.String("request_id", requestID))
		respondError(c, common.ErrGatewayTimeout, "")
	case errors.Is(err, context.Canceled):
		// 用戶端已離線
		c.Status(499)
	default:
		common.LogError("處理請求失敗", zap.Error(err), zap.String("request_id", requestID))
		respondError(c, common.ErrInternalError, "")
	}
}

// HandleClassify 分類並正規化，不呼叫生成器
func (h *Handler) HandleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidRequest, "query is required and must be at most 2000 characters")
		return
	}

	normalized, decision := h.recipes.Prepare(req.Query)
	resp := ClassifyResponse{
		Category: decision.Category,
		Matcher:  decision.Matcher,
		Rule:     decision.Rule,
	}
	if decision.Category.Accepted() {
		resp.Request = &normalized
	}
	c.JSON(http.StatusOK, resp)
}

// HandleValidate 解析並檢查一份候選食譜
func (h *Handler) HandleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.ErrInvalidRequest, "candidate is required")
		return
	}

	candidate := recipeService.ParseCandidate(req.Candidate)
	c.JSON(http.StatusOK, ValidateResponse{
		Candidate:  candidate,
		Validation: h.recipes.Validate(candidate),
		Rendered:   recipeService.RenderMarkdown(candidate),
	})
}

func requestIDFrom(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := uuid.New().String()
	c.Header("X-Request-ID", id)
	return id
}

func wantsMarkdown(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/markdown") || strings.Contains(accept, "text/plain")
}

func respondError(c *gin.Context, e *common.CustomError, details string) {
	c.AbortWithStatusJSON(e.Status, e.Response(details))
}
