// Package nutrition 由使用者屬性估算每日所需熱量（修正版 Harris-Benedict 公式）
package nutrition

import (
	"fmt"
	"math"

	"kondate-planner/internal/pkg/common"
)

// 性別
const (
	GenderMale   = "男性"
	GenderFemale = "女性"
	GenderOther  = "その他"
)

// 活動量
const (
	ActivityLow    = "低い"
	ActivityNormal = "普通"
	ActivityHigh   = "高い"
)

var activityFactors = map[string]float64{
	ActivityLow:    1.2,
	ActivityNormal: 1.55,
	ActivityHigh:   1.9,
}

// 各餐佔一日熱量的比例
var mealShares = map[string]float64{
	"朝食": 0.3,
	"昼食": 0.3,
	"夕食": 0.4,
}

// Profile 使用者屬性
type Profile struct {
	Gender             string   `json:"gender"`
	Age                int      `json:"age"`
	HeightCM           float64  `json:"height_cm"`
	WeightKG           float64  `json:"weight_kg"`
	ActivityLevel      string   `json:"activity_level"`
	DietaryPreferences []string `json:"dietary_preferences,omitempty"`
}

// Validate 檢查屬性範圍
func (p Profile) Validate() error {
	if p.Age < 1 || p.Age > 120 {
		return common.NewValidationError("年齢は1〜120で指定してください")
	}
	if p.HeightCM < 50 || p.HeightCM > 250 {
		return common.NewValidationError("身長は50〜250cmで指定してください")
	}
	if p.WeightKG < 20 || p.WeightKG > 300 {
		return common.NewValidationError("体重は20〜300kgで指定してください")
	}
	if _, ok := activityFactors[p.ActivityLevel]; !ok {
		return common.NewValidationError(fmt.Sprintf("活動レベル %q は指定できません", p.ActivityLevel))
	}
	return nil
}

// BMR 基礎代謝量；男性以外は女性の式を使う
func (p Profile) BMR() float64 {
	if p.Gender == GenderMale {
		return 88.362 + 13.397*p.WeightKG + 4.799*p.HeightCM - 5.677*float64(p.Age)
	}
	return 447.593 + 9.247*p.WeightKG + 3.098*p.HeightCM - 4.330*float64(p.Age)
}

// EstimateDailyCalories 一日所需熱量
func EstimateDailyCalories(p Profile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return p.BMR() * activityFactors[p.ActivityLevel], nil
}

// MealTarget 單餐熱量目標
type MealTarget struct {
	Slot     string `json:"slot"`
	Calories int    `json:"calories"`
}

// Targets 一日與各餐的熱量目標
type Targets struct {
	Daily int          `json:"daily"`
	Meals []MealTarget `json:"meals"`
}

// MealTargets 依一日熱量計算朝食・昼食・夕食的目標（30/30/40）
func MealTargets(daily float64) Targets {
	t := Targets{Daily: round(daily)}
	for _, slot := range []string{"朝食", "昼食", "夕食"} {
		t.Meals = append(t.Meals, MealTarget{Slot: slot, Calories: round(daily * mealShares[slot])})
	}
	return t
}

func round(v float64) int {
	return int(math.Round(v))
}
