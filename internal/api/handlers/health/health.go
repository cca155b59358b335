package health

import (
	"net/http"
	"runtime"
	"time"

	"kondate-planner/internal/core/cache"
	"kondate-planner/internal/core/queue"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueueReporter 提供隊列狀態
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// SessionCounter 提供目前 session 數
type SessionCounter interface {
	Len() int
}

// Handler 健康檢查處理器
type Handler struct {
	version    string
	startedAt  time.Time
	queue      QueueReporter
	cache      cache.Store
	sessions   SessionCounter
	categories int
}

// Options 建立 Handler 所需的依賴，皆可為 nil
type Options struct {
	Version    string
	Queue      QueueReporter
	Cache      cache.Store
	Sessions   SessionCounter
	Categories int
}

// NewHandler 創建健康檢查處理器
func NewHandler(opts Options) *Handler {
	return &Handler{
		version:    opts.Version,
		startedAt:  time.Now(),
		queue:      opts.Queue,
		cache:      opts.Cache,
		sessions:   opts.Sessions,
		categories: opts.Categories,
	}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Runtime    map[string]interface{} `json:"runtime"`
	Queue      *queue.Status          `json:"queue,omitempty"`
	Cache      *cache.Stats           `json:"cache,omitempty"`
	Sessions   int                    `json:"sessions"`
	Categories int                    `json:"categories"`
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Categories: h.categories,
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		response.Cache = &stats
	}
	if h.sessions != nil {
		response.Sessions = h.sessions.Len()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：類別表為空或隊列已滿時回覆 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.categories == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "category table is empty",
		})
		return
	}
	if h.queue != nil {
		if s := h.queue.GetQueueStatus(); s.MaxQueueSize > 0 && s.QueueLength >= s.MaxQueueSize {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "generation queue is full",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
