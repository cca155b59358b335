package plan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineKind 行的分類
type LineKind int

const (
	Unrecognized LineKind = iota
	DateHeading
	SlotHeading
	ReasonField
	MaterialsField
	CaloriesField
	CostField
	URLField
	SummaryMarker
)

func (k LineKind) String() string {
	switch k {
	case DateHeading:
		return "DateHeading"
	case SlotHeading:
		return "SlotHeading"
	case ReasonField:
		return "ReasonField"
	case MaterialsField:
		return "MaterialsField"
	case CaloriesField:
		return "CaloriesField"
	case CostField:
		return "CostField"
	case URLField:
		return "URLField"
	case SummaryMarker:
		return "SummaryMarker"
	default:
		return "Unrecognized"
	}
}

// Line 分類結果。Date 只在 DateHeading、Slot 只在 SlotHeading 時有值，
// Value 為冒號之後的文字（已去除前後空白）。
type Line struct {
	Kind  LineKind
	Raw   string
	Date  string
	Slot  string
	Value string
}

// Labels 各欄位的標籤文字
type Labels struct {
	Reason        string
	Materials     string
	Calories      string
	Cost          string
	URL           string
	SummaryMarker string
}

// DefaultLabels 日文標籤
var DefaultLabels = Labels{
	Reason:        "理由",
	Materials:     "材料",
	Calories:      "推定カロリー",
	Cost:          "推定コスト",
	URL:           "URL",
	SummaryMarker: "1週間分の材料まとめ",
}

var weekdayNames = []string{
	"月", "火", "水", "木", "金", "土", "日",
	"mon", "tue", "wed", "thu", "fri", "sat", "sun",
}

// Classifier 將單行文字分類，不保存狀態
type Classifier struct {
	labels Labels
	slots  []string
}

// NewClassifier 創建分類器；slots 為可接受的餐別標籤
func NewClassifier(slots []string, labels Labels) Classifier {
	accepted := make([]string, 0, len(slots))
	for _, s := range slots {
		if s = strings.TrimSpace(s); s != "" {
			accepted = append(accepted, s)
		}
	}
	return Classifier{labels: labels, slots: accepted}
}

// Classify 分類一行
func (c Classifier) Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	out := Line{Kind: Unrecognized, Raw: line}
	if line == "" {
		return out
	}

	if c.isSummaryMarker(line) {
		out.Kind = SummaryMarker
		return out
	}

	body, emphasized := normalizeBody(line)

	for _, slot := range c.slots {
		if v, ok := labelValue(body, slot, emphasized); ok {
			out.Kind = SlotHeading
			out.Slot = slot
			out.Value = v
			return out
		}
	}

	fields := []struct {
		label string
		kind  LineKind
	}{
		{c.labels.Reason, ReasonField},
		{c.labels.Materials, MaterialsField},
		{c.labels.Calories, CaloriesField},
		{c.labels.Cost, CostField},
		{c.labels.URL, URLField},
	}
	for _, f := range fields {
		if f.label == "" {
			continue
		}
		if v, ok := labelValue(body, f.label, emphasized); ok {
			out.Kind = f.kind
			out.Value = v
			return out
		}
	}

	// 以標籤開頭的強調行已在上面處理，其餘才判斷日期標題
	if date, ok := dateHeading(line); ok {
		out.Kind = DateHeading
		out.Date = date
	}
	return out
}

func (c Classifier) isSummaryMarker(line string) bool {
	if c.labels.SummaryMarker == "" {
		return false
	}
	s := strings.TrimLeft(line, "#*_ \t")
	return strings.HasPrefix(s, c.labels.SummaryMarker)
}

// dateHeading 判斷是否為「**日期 (曜日):**」形式的標題。
// 需要有包裹標記（** 或 __ 或 #）以及括號中的曜日。
func dateHeading(line string) (string, bool) {
	var inner string
	switch {
	case strings.HasPrefix(line, "**"), strings.HasPrefix(line, "__"):
		inner = line[2:]
	case strings.HasPrefix(line, "#"):
		inner = strings.TrimLeft(line, "#")
	default:
		return "", false
	}

	open := strings.IndexAny(inner, "(（")
	if open < 0 {
		return "", false
	}
	_, openSize := utf8.DecodeRuneInString(inner[open:])
	rest := inner[open+openSize:]
	closing := strings.IndexAny(rest, ")）")
	if closing < 0 {
		return "", false
	}
	if !isWeekday(strings.TrimSpace(rest[:closing])) {
		return "", false
	}

	date := strings.Trim(inner[:open], "*_# \t")
	if date == "" {
		return "", false
	}
	return date, true
}

func isWeekday(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > 9 {
		return false
	}
	s = strings.ToLower(s)
	for _, w := range weekdayNames {
		if strings.HasPrefix(s, w) {
			return true
		}
	}
	return false
}

// normalizeBody 去除行首的項目符號與強調標記，emphasized 表示行首有 ** 或 __
func normalizeBody(line string) (body string, emphasized bool) {
	s := strings.TrimSpace(line)
	for {
		switch {
		case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "* "), strings.HasPrefix(s, "+ "):
			s = strings.TrimLeftFunc(s[2:], unicode.IsSpace)
		case strings.HasPrefix(s, "・"):
			s = strings.TrimLeftFunc(strings.TrimPrefix(s, "・"), unicode.IsSpace)
		case strings.HasPrefix(s, "**"), strings.HasPrefix(s, "__"):
			s = strings.TrimLeftFunc(s[2:], unicode.IsSpace)
			emphasized = true
		default:
			return s, emphasized
		}
	}
}

// labelValue 若 body 以「label:」或「label：」開頭，返回冒號後的文字。
// 接受「**label:** value」與「**label: value**」兩種強調寫法。
func labelValue(body, label string, emphasized bool) (string, bool) {
	if !strings.HasPrefix(body, label) {
		return "", false
	}
	rest := strings.TrimLeft(body[len(label):], " \t")
	closed := false
	if emphasized && (strings.HasPrefix(rest, "**") || strings.HasPrefix(rest, "__")) {
		rest = strings.TrimLeft(rest[2:], " \t")
		closed = true
	}
	for _, colon := range []string{":", "："} {
		if !strings.HasPrefix(rest, colon) {
			continue
		}
		v := strings.TrimSpace(rest[len(colon):])
		if !emphasized {
			// 行首沒有強調時，值原樣保留（包含值本身的 ** 標記）
			return v, true
		}
		if !closed && (strings.HasPrefix(v, "**") || strings.HasPrefix(v, "__")) {
			v = strings.TrimSpace(v[2:])
			closed = true
		}
		if !closed {
			v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(v, "**"), "__"))
		}
		return v, true
	}
	return "", false
}
