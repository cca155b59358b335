package plan

import (
	"kondate-planner/internal/core/nutrition"
	planModel "kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/presenter"
	"kondate-planner/internal/pkg/common"
)

// RatiosRequest 主食比重（0〜100）
type RatiosRequest struct {
	Rice   int `json:"rice"`
	Bread  int `json:"bread"`
	Noodle int `json:"noodle"`
}

// GenerateRequest 獻立生成請求
type GenerateRequest struct {
	Request   string             `json:"request"`              // 使用者要望
	StartDate string             `json:"start_date,omitempty"` // YYYY-MM-DD，省略時為今天
	MealTypes []string           `json:"meal_types"`           // 省略時使用設定的預設值
	Ratios    *RatiosRequest     `json:"ratios,omitempty"`
	Profile   *nutrition.Profile `json:"profile,omitempty"`
}

// GenerateResponse 獻立生成結果
type GenerateResponse struct {
	SessionID string                     `json:"session_id"`
	MealPlan  planModel.MealPlan         `json:"meal_plan"`
	Summary   planModel.MaterialsSummary `json:"materials_summary"`
	Debug     planner.DebugInfo          `json:"debug"`
	Page      presenter.Page             `json:"page"`
}

// GenerateErrorResponse 生成失敗時仍帶回除錯資訊
type GenerateErrorResponse struct {
	common.ErrorResponse
	Debug *planner.DebugInfo `json:"debug,omitempty"`
}

// DetailRequest 切換到單餐明細
type DetailRequest struct {
	Date string `json:"date" binding:"required"`
	Slot string `json:"slot" binding:"required"`
}

// HelpResponse 使い方
type HelpResponse struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}
