// Package session 保存每個使用者的當前獻立與檢視狀態
package session

import (
	"sync"
	"time"

	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/presenter"
	"kondate-planner/internal/core/store"
)

// State 一個 session 的應用狀態。
// 獻立只會被整體替換，不會就地修改，所以快照可以共用底層切片。
type State struct {
	mu        sync.RWMutex
	plan      plan.MealPlan
	summary   plan.MaterialsSummary
	view      presenter.View
	debug     *planner.DebugInfo
	updatedAt time.Time
}

// Snapshot State 的唯讀複本
type Snapshot struct {
	Plan      plan.MealPlan         `json:"meal_plan"`
	Summary   plan.MaterialsSummary `json:"materials_summary"`
	View      presenter.View        `json:"view"`
	Debug     *planner.DebugInfo    `json:"debug,omitempty"`
	HasPlan   bool                  `json:"has_plan"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewState 創建空狀態
func NewState() *State {
	return &State{}
}

// Replace 以新的獻立取代目前內容並回到格狀檢視
func (s *State) Replace(p plan.MealPlan, summary plan.MaterialsSummary, debug *planner.DebugInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
	s.summary = summary
	s.debug = debug
	s.view = presenter.GridSelector()
	s.updatedAt = time.Now()
}

// RecordDebug 只更新除錯資訊（生成失敗時使用），獻立保持不變
func (s *State) RecordDebug(debug *planner.DebugInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = debug
}

// Load 解析存檔並取代目前內容；失敗時狀態保持不變
func (s *State) Load(data []byte) error {
	p, summary, err := store.Deserialize(data)
	if err != nil {
		return err
	}
	s.Replace(p, summary, nil)
	return nil
}

// Reset 清空狀態
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan.MealPlan{}
	s.summary = nil
	s.debug = nil
	s.view = presenter.GridSelector()
	s.updatedAt = time.Now()
}

// Snapshot 取得目前狀態
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Plan:      s.plan,
		Summary:   s.summary,
		View:      s.view,
		Debug:     s.debug,
		HasPlan:   !s.plan.IsEmpty(),
		UpdatedAt: s.updatedAt,
	}
}

// ShowGrid 切換到格狀檢視
func (s *State) ShowGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = presenter.GridSelector()
}

// ShowDetail 切換到單餐明細；不存在的組合在渲染時才以 not-found 呈現
func (s *State) ShowDetail(date, slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = presenter.DetailSelector(date, slot)
}

// View 目前檢視
func (s *State) View() presenter.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Page 依目前檢視渲染
func (s *State) Page() presenter.Page {
	snap := s.Snapshot()
	return presenter.Render(snap.Plan, snap.Summary, snap.View)
}
