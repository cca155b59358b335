package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/recipe"
	"kondate-planner/internal/pkg/common"
)

// 生成階段名稱，用於日誌與進度回報
const (
	StageRecommend = "recommend"
	StageCollect   = "collect"
	StageCompose   = "compose"
	StageParse     = "parse"
	StageDone      = "done"
)

// TextGenerator 語言模型呼叫，由 ai/service.Service 實作
type TextGenerator interface {
	Generate(ctx context.Context, stage, prompt string) (string, error)
}

// RecipeCollector 候選食譜收集，由 recipe.Collector 實作
type RecipeCollector interface {
	Collect(ctx context.Context, raw string) (recipe.Collection, error)
}

// ProgressFunc 進度回報
type ProgressFunc func(stage string, percent int)

// Ratios 主食比重（百分比，不要求加總為 100）
type Ratios struct {
	Rice   int `json:"rice"`
	Bread  int `json:"bread"`
	Noodle int `json:"noodle"`
}

// Validate 每項需在 0〜100
func (r Ratios) Validate() error {
	for _, v := range []int{r.Rice, r.Bread, r.Noodle} {
		if v < 0 || v > 100 {
			return common.NewValidationError("主食の比重は0〜100で指定してください")
		}
	}
	return nil
}

// Request 一次獻立生成的輸入
type Request struct {
	UserRequest string
	StartDate   time.Time
	MealTypes   []string
	Ratios      Ratios
	Profile     *nutrition.Profile
	OnProgress  ProgressFunc
}

// normalize 去掉空白與重複的食事タイプ，並檢查必要欄位
func (r Request) normalize() (Request, error) {
	r.UserRequest = strings.TrimSpace(r.UserRequest)

	seen := make(map[string]bool, len(r.MealTypes))
	mealTypes := make([]string, 0, len(r.MealTypes))
	for _, m := range r.MealTypes {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		mealTypes = append(mealTypes, m)
	}
	r.MealTypes = mealTypes

	if r.UserRequest == "" || len(r.MealTypes) == 0 {
		return r, common.NewValidationError("要望を入力し、少なくとも1つの食事タイプを選択してください。")
	}
	if r.StartDate.IsZero() {
		return r, common.NewValidationError("開始日を選択してください")
	}
	if err := r.Ratios.Validate(); err != nil {
		return r, err
	}
	if r.Profile != nil {
		if err := r.Profile.Validate(); err != nil {
			return r, err
		}
	}
	return r, nil
}

func (r Request) progress(stage string, percent int) {
	if r.OnProgress != nil {
		r.OnProgress(stage, percent)
	}
}

// DebugInfo 生成過程的除錯資訊
type DebugInfo struct {
	CategoryIDs      string             `json:"category_ids"`
	Attempted        []string           `json:"attempted_categories"`
	FailedCategories []string           `json:"failed_categories,omitempty"`
	RecipeCount      int                `json:"recipe_count"`
	MealPlanText     string             `json:"meal_plan_text,omitempty"`
	Targets          *nutrition.Targets `json:"targets,omitempty"`
	DurationMS       int64              `json:"duration_ms"`
}

// Result 生成結果
type Result struct {
	Plan    plan.MealPlan         `json:"meal_plan"`
	Summary plan.MaterialsSummary `json:"materials_summary"`
	Debug   DebugInfo             `json:"debug"`
}

var weekdays = []string{"日", "月", "火", "水", "木", "金", "土"}

// Weekday 日文曜日
func Weekday(t time.Time) string {
	return weekdays[t.Weekday()]
}

// FormatStartDate 「2024-03-01 (金)」
func FormatStartDate(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), Weekday(t))
}
