package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// 超過此數量時順便清掉過期指紋
const dedupPruneThreshold = 1024

// Deduplicator 在時間窗內拒絕內容完全相同的 POST 請求
type Deduplicator struct {
	window time.Duration
	mu     sync.Mutex
	seen   map[string]time.Time
	now    func() time.Time
}

// NewDeduplicator 建立去重器；window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Handler 請求去重中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			// 多半是超過大小限制，交給後續處理回應
			common.LogWarn("Failed to read request body", zap.Error(err))
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// 生成請求指紋
		fingerprint := common.HashParts(c.Request.Method, c.Request.URL.Path, c.ClientIP(), string(body))
		if !d.allow(fingerprint) {
			common.LogWarn("重複請求已拒絕", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(common.ErrDuplicateRequest.Status, common.ErrDuplicateRequest.Response(""))
			return
		}

		c.Next()

		// 伺服器端失敗不佔用時間窗，讓用戶端可以立即重試
		if c.Writer.Status() >= http.StatusInternalServerError {
			d.forget(fingerprint)
		}
	}
}

func (d *Deduplicator) forget(fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, fingerprint)
}

func (d *Deduplicator) allow(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return false
	}
	d.seen[fingerprint] = now

	if len(d.seen) > dedupPruneThreshold {
		for k, t := range d.seen {
			if now.Sub(t) > d.window {
				delete(d.seen, k)
			}
		}
	}
	return true
}
