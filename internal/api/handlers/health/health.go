package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/ai/queue"
	"recipe-assistant/internal/core/policy"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
	Policy    map[string]interface{} `json:"policy,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	queue   *queue.Manager
	cache   cache.Store
	policy  *policy.Store
	rego    *policy.RegoEvaluator
}

// NewHandler 建立健康檢查處理器；cache、policy、rego 可為 nil
func NewHandler(version string, q *queue.Manager, c cache.Store, p *policy.Store, rego *policy.RegoEvaluator) *Handler {
	return &Handler{version: version, queue: q, cache: c, policy: p, rego: rego}
}

// HealthCheck 回報執行期、隊列、快取與規則狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}
	if h.policy != nil {
		rs := h.policy.Current()
		response.Policy = map[string]interface{}{
			"harm_rules":             len(rs.Harm),
			"scope_rules":            len(rs.OutOfScope),
			"specialist_ingredients": len(rs.Specialist),
			"rego_loaded":            h.rego != nil && h.rego.Loaded(),
		}
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 隊列未運行時回報未就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue == nil || !h.queue.GetQueueStatus().Running {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
