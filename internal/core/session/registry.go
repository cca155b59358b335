package session

import (
	"sync"
	"time"

	"kondate-planner/internal/pkg/common"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Registry session ID 對應 State，超過容量或閒置 ttl 後淘汰
type Registry struct {
	mu     sync.Mutex
	states *expirable.LRU[string, *State]
}

// NewRegistry 創建 session 註冊表
func NewRegistry(maxSessions int, ttl time.Duration) *Registry {
	onEvict := func(id string, _ *State) {
		common.LogDebug("Session evicted", zap.String("session_id", id))
	}
	return &Registry{
		states: expirable.NewLRU[string, *State](maxSessions, onEvict, ttl),
	}
}

// Get 取得既有 session，並延長其存活時間
func (r *Registry) Get(id string) (*State, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states.Get(id)
	if !ok {
		return nil, false
	}
	r.states.Add(id, st)
	return st, true
}

// Create 建立新的 session
func (r *Registry) Create() (string, *State) {
	id := common.GenerateUUID()
	st := NewState()
	r.mu.Lock()
	r.states.Add(id, st)
	r.mu.Unlock()
	return id, st
}

// GetOrCreate 找不到 id 時建立新 session，created 表示是否為新建
func (r *Registry) GetOrCreate(id string) (string, *State, bool) {
	if st, ok := r.Get(id); ok {
		return id, st, false
	}
	newID, st := r.Create()
	return newID, st, true
}

// Remove 刪除 session
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states.Remove(id)
}

// Len 目前 session 數
func (r *Registry) Len() int {
	return r.states.Len()
}
