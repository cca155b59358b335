package plan

import (
	"strconv"
	"strings"
)

// ExtractNumber 取出字串中第一段連續數字，找不到時返回 0。
// 全形數字視同半形，「1,200kcal」只取 1。
func ExtractNumber(s string) int {
	var digits strings.Builder
	for _, r := range s {
		d, ok := asciiDigit(r)
		if ok {
			digits.WriteRune(d)
			continue
		}
		if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

func asciiDigit(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r, true
	case r >= '０' && r <= '９':
		return '0' + (r - '０'), true
	default:
		return 0, false
	}
}

// DayTotals 單日合計
type DayTotals struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Cost     int    `json:"cost"`
}

// Totals 每日與一週合計
type Totals struct {
	Days     []DayTotals `json:"days"`
	Calories int         `json:"calories"`
	Cost     int         `json:"cost"`
}

// ComputeTotals 依推定カロリー與推定コスト計算合計，缺少數字的欄位以 0 計
func ComputeTotals(p MealPlan) Totals {
	totals := Totals{Days: make([]DayTotals, 0, len(p.Days))}
	for _, day := range p.Days {
		dt := DayTotals{Date: day.Date}
		for _, meal := range day.Meals {
			dt.Calories += ExtractNumber(meal.Entry.Calories)
			dt.Cost += ExtractNumber(meal.Entry.Cost)
		}
		totals.Days = append(totals.Days, dt)
		totals.Calories += dt.Calories
		totals.Cost += dt.Cost
	}
	return totals
}

// HasEstimates 是否有任何一餐帶有推定カロリー或推定コスト
func HasEstimates(p MealPlan) bool {
	for _, day := range p.Days {
		for _, meal := range day.Meals {
			if meal.Entry.Calories != "" || meal.Entry.Cost != "" {
				return true
			}
		}
	}
	return false
}
