package middleware

import (
	"net/http"

	"kondate-planner/internal/core/session"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionHeader 用戶端帶入與伺服器回傳 session ID 的標頭
	SessionHeader = "X-Session-ID"
	// SessionIDKey gin.Context 中的 session ID
	SessionIDKey = "session_id"
	// SessionStateKey gin.Context 中的 *session.State
	SessionStateKey = "session_state"
)

// Session 依 X-Session-ID 取得或建立 session，並回寫到響應標頭
func Session(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.GetHeader(SessionHeader)
		id, state, created := registry.GetOrCreate(requested)
		if created {
			common.LogDebug("Session created",
				zap.String("session_id", id),
				zap.Bool("replaced_unknown", requested != ""),
			)
		}

		c.Set(SessionIDKey, id)
		c.Set(SessionStateKey, state)
		c.Header(SessionHeader, id)

		c.Next()
	}
}

// StateFrom 取出 Session 中間件放入的狀態
func StateFrom(c *gin.Context) (*session.State, bool) {
	v, ok := c.Get(SessionStateKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*session.State)
	return st, ok
}

// EndSession 刪除目前的 session，之後同一 ID 的請求會得到新的 session
func EndSession(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetString(SessionIDKey)
		registry.Remove(id)
		c.Header(SessionHeader, "")
		common.LogDebug("Session ended", zap.String("session_id", id))
		c.Status(http.StatusNoContent)
	}
}
