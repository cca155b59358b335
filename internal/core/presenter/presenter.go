// Package presenter 將 MealPlan 投影成月曆格與單餐明細，只讀不寫
package presenter

import (
	"fmt"

	"kondate-planner/internal/core/plan"
)

// 格狀檢視的欄數
const columns = 3

var mealIcons = map[string]string{
	"朝食": "fa-sun",
	"昼食": "fa-cloud-sun",
	"夕食": "fa-moon",
}

// Icon 餐別圖示（Font Awesome class）
func Icon(slot string) string {
	if icon, ok := mealIcons[slot]; ok {
		return icon
	}
	return "fa-utensils"
}

// View 目前檢視：零值代表格狀檢視，否則指向 (Date, Slot)
type View struct {
	Date string `json:"date,omitempty"`
	Slot string `json:"slot,omitempty"`
}

// GridSelector 格狀檢視
func GridSelector() View {
	return View{}
}

// DetailSelector 指向單餐明細
func DetailSelector(date, slot string) View {
	return View{Date: date, Slot: slot}
}

// IsGrid 是否為格狀檢視
func (v View) IsGrid() bool {
	return v.Date == "" && v.Slot == ""
}

// MealCard 格狀檢視中的一餐
type MealCard struct {
	Slot        string `json:"slot"`
	Icon        string `json:"icon"`
	Recipe      string `json:"recipe"`
	Calories    string `json:"calories"`
	Cost        string `json:"cost"`
	DetailLabel string `json:"detail_label"`
}

// DayCard 格狀檢視中的一天
type DayCard struct {
	Date     string     `json:"date"`
	Column   int        `json:"column"`
	Meals    []MealCard `json:"meals"`
	Calories int        `json:"calories"`
	Cost     int        `json:"cost"`
}

// GridView 格狀檢視
type GridView struct {
	Days       []DayCard `json:"days"`
	Calories   int       `json:"calories"`
	Cost       int       `json:"cost"`
	ShowTotals bool      `json:"show_totals"`
	Summary    []string  `json:"materials_summary"`
}

// DetailView 單餐明細
type DetailView struct {
	Date  string              `json:"date"`
	Slot  string              `json:"slot"`
	Icon  string              `json:"icon"`
	Entry plan.DailyMealEntry `json:"entry"`
}

// NotFoundView 指定的 (日期, 餐別) 不存在
type NotFoundView struct {
	Message string `json:"message"`
	Back    string `json:"back"`
}

// PageKind 頁面種類
type PageKind string

const (
	PageEmpty    PageKind = "empty"
	PageGrid     PageKind = "grid"
	PageDetail   PageKind = "detail"
	PageNotFound PageKind = "not_found"
)

// BackToGrid 返回格狀檢視的動作名稱
const BackToGrid = "カレンダーに戻る"

// Page 一次渲染的結果，只有對應 Kind 的欄位有值
type Page struct {
	Kind     PageKind      `json:"kind"`
	Message  string        `json:"message,omitempty"`
	Grid     *GridView     `json:"grid,omitempty"`
	Detail   *DetailView   `json:"detail,omitempty"`
	NotFound *NotFoundView `json:"not_found,omitempty"`
}

// Grid 依日期與餐別順序組出格狀檢視，第 i 天放在第 i%3 欄
func Grid(p plan.MealPlan, summary plan.MaterialsSummary) GridView {
	totals := plan.ComputeTotals(p)
	view := GridView{
		Days:       make([]DayCard, 0, len(p.Days)),
		Calories:   totals.Calories,
		Cost:       totals.Cost,
		ShowTotals: plan.HasEstimates(p),
		Summary:    append([]string{}, summary...),
	}
	for i, day := range p.Days {
		card := DayCard{
			Date:     day.Date,
			Column:   i % columns,
			Meals:    make([]MealCard, 0, len(day.Meals)),
			Calories: totals.Days[i].Calories,
			Cost:     totals.Days[i].Cost,
		}
		for _, meal := range day.Meals {
			card.Meals = append(card.Meals, MealCard{
				Slot:        meal.Slot,
				Icon:        Icon(meal.Slot),
				Recipe:      meal.Entry.Recipe,
				Calories:    meal.Entry.Calories,
				Cost:        meal.Entry.Cost,
				DetailLabel: fmt.Sprintf("%s %sの詳細を見る", day.Date, meal.Slot),
			})
		}
		view.Days = append(view.Days, card)
	}
	return view
}

// Detail 取出單餐明細
func Detail(p plan.MealPlan, date, slot string) (DetailView, bool) {
	entry, ok := p.Entry(date, slot)
	if !ok {
		return DetailView{}, false
	}
	return DetailView{Date: date, Slot: slot, Icon: Icon(slot), Entry: entry}, true
}

// NotFoundMessage 「{date}の{slot}の情報が見つかりません。」
func NotFoundMessage(date, slot string) string {
	return fmt.Sprintf("%sの%sの情報が見つかりません。", date, slot)
}

// Render 依目前檢視產生頁面；指向不存在的明細時返回 not-found 頁面
func Render(p plan.MealPlan, summary plan.MaterialsSummary, view View) Page {
	if p.IsEmpty() && len(summary) == 0 {
		return Page{Kind: PageEmpty, Message: "献立がまだありません。"}
	}
	if view.IsGrid() {
		grid := Grid(p, summary)
		return Page{Kind: PageGrid, Grid: &grid}
	}
	detail, ok := Detail(p, view.Date, view.Slot)
	if !ok {
		return Page{
			Kind:     PageNotFound,
			NotFound: &NotFoundView{Message: NotFoundMessage(view.Date, view.Slot), Back: BackToGrid},
		}
	}
	return Page{Kind: PageDetail, Detail: &detail}
}
