package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"kondate-planner/internal/pkg/common"
)

const (
	defaultDedupWindow = time.Second
	dedupCacheSize     = 4096
)

// Deduplicator 在 window 內拒絕相同的 POST 請求
type Deduplicator struct {
	mu     sync.Mutex
	window time.Duration
	seen   *expirable.LRU[string, time.Time]
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window: window,
		seen:   expirable.NewLRU[string, time.Time](dedupCacheSize, nil, window),
	}
}

// Seen 記錄指紋；window 內已出現過時返回 true
func (d *Deduplicator) Seen(fingerprint string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.seen.Get(fingerprint); ok && now.Sub(last) <= d.window {
		return true
	}
	d.seen.Add(fingerprint, now)
	return false
}

// Deduplication 請求去重中間件
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := NewDeduplicator(window)
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		// 不同 session 的相同請求不互相影響
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.GetHeader(SessionHeader)
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.Seen(fingerprint, time.Now()) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			status, resp := common.NewErrorResponse(common.ErrTooManyRequests, false)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Next()
	}
}
