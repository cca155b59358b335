package plan

import (
	"strings"
)

// mode 解析器狀態
type mode int

const (
	scanning mode = iota
	inSummary
)

// parseState 逐行推進的狀態。day 為 -1 表示尚未開啟日期，slot 為空表示尚未開啟餐別。
type parseState struct {
	mode    mode
	plan    MealPlan
	summary MaterialsSummary
	day     int
	slot    string
}

func newParseState() *parseState {
	return &parseState{mode: scanning, day: -1}
}

// apply 依分類結果轉移狀態
func (st *parseState) apply(l Line) {
	if st.mode == inSummary {
		st.summary = append(st.summary, l.Raw)
		return
	}

	switch l.Kind {
	case SummaryMarker:
		st.mode = inSummary

	case DateHeading:
		// 重複的日期回到同一天，既有的餐別保留
		st.day = st.plan.openDay(l.Date)
		st.slot = ""

	case SlotHeading:
		if st.day < 0 {
			return
		}
		st.plan.Days[st.day].put(l.Slot, DailyMealEntry{Recipe: l.Value})
		st.slot = l.Slot

	case ReasonField, MaterialsField, CaloriesField, CostField, URLField:
		entry := st.current()
		if entry == nil {
			return
		}
		switch l.Kind {
		case ReasonField:
			entry.Reason = l.Value
		case MaterialsField:
			entry.Materials = l.Value
		case CaloriesField:
			entry.Calories = l.Value
		case CostField:
			entry.Cost = l.Value
		case URLField:
			entry.URL = l.Value
		}
	}
}

// current 目前開啟的餐別，未開啟時返回 nil
func (st *parseState) current() *DailyMealEntry {
	if st.day < 0 || st.slot == "" {
		return nil
	}
	return st.plan.Days[st.day].slot(st.slot)
}

// Parser 將 LLM 的獻立文字轉為 MealPlan 與 MaterialsSummary
type Parser struct {
	classifier Classifier
}

// NewParser 創建解析器；mealTypes 為可接受的餐別
func NewParser(mealTypes []string, labels Labels) *Parser {
	return &Parser{classifier: NewClassifier(mealTypes, labels)}
}

// Parse 解析文字。無法辨識的行直接略過，不會返回錯誤。
func (p *Parser) Parse(text string) (MealPlan, MaterialsSummary) {
	st := newParseState()
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		st.apply(p.classifier.Classify(raw))
	}
	return st.plan, st.summary
}

// Parse 使用預設標籤解析
func Parse(text string, mealTypes []string) (MealPlan, MaterialsSummary) {
	return NewParser(mealTypes, DefaultLabels).Parse(text)
}
