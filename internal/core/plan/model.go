// Package plan 獻立的資料模型與 LLM 文字輸出的解析器。
//
// MealPlan 保留日期與餐別在原始文字中出現的順序，JSON 編碼時也依此順序輸出。
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DailyMealEntry 一格獻立（某日某餐）
type DailyMealEntry struct {
	Recipe    string `json:"recipe"`
	Reason    string `json:"reason"`
	Materials string `json:"materials"`
	URL       string `json:"url"`
	Calories  string `json:"calories,omitempty"`
	Cost      string `json:"cost,omitempty"`
}

// SlotEntry 餐別與其內容
type SlotEntry struct {
	Slot  string
	Entry DailyMealEntry
}

// DayPlan 一天的獻立，Meals 依出現順序排列
type DayPlan struct {
	Date  string
	Meals []SlotEntry
}

// MealPlan 日期 → 餐別 → 內容，鍵依插入順序保存
type MealPlan struct {
	Days []DayPlan
}

// MaterialsSummary 材料彙整的原始行
type MaterialsSummary []string

// IsEmpty 是否沒有任何日期
func (p MealPlan) IsEmpty() bool {
	return len(p.Days) == 0
}

// Dates 依順序返回所有日期鍵
func (p MealPlan) Dates() []string {
	dates := make([]string, 0, len(p.Days))
	for _, d := range p.Days {
		dates = append(dates, d.Date)
	}
	return dates
}

// Day 查詢某日
func (p MealPlan) Day(date string) (DayPlan, bool) {
	for _, d := range p.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DayPlan{}, false
}

// Entry 查詢某日某餐
func (p MealPlan) Entry(date, slot string) (DailyMealEntry, bool) {
	day, ok := p.Day(date)
	if !ok {
		return DailyMealEntry{}, false
	}
	return day.Entry(slot)
}

// Entry 查詢某餐
func (d DayPlan) Entry(slot string) (DailyMealEntry, bool) {
	for _, m := range d.Meals {
		if m.Slot == slot {
			return m.Entry, true
		}
	}
	return DailyMealEntry{}, false
}

// openDay 返回日期的索引，不存在時追加在最後
func (p *MealPlan) openDay(date string) int {
	for i := range p.Days {
		if p.Days[i].Date == date {
			return i
		}
	}
	p.Days = append(p.Days, DayPlan{Date: date})
	return len(p.Days) - 1
}

// slot 返回餐別內容的指標，不存在時返回 nil
func (d *DayPlan) slot(name string) *DailyMealEntry {
	for i := range d.Meals {
		if d.Meals[i].Slot == name {
			return &d.Meals[i].Entry
		}
	}
	return nil
}

// put 寫入餐別內容；已存在時覆蓋並保留原位置
func (d *DayPlan) put(name string, entry DailyMealEntry) {
	if e := d.slot(name); e != nil {
		*e = entry
		return
	}
	d.Meals = append(d.Meals, SlotEntry{Slot: name, Entry: entry})
}

// MarshalJSON 依插入順序輸出物件
func (p MealPlan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range p.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, day.Date); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, meal := range day.Meals {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, meal.Slot); err != nil {
				return nil, err
			}
			val, err := encodeNoEscape(meal.Entry)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 以 token 逐一讀取，保留鍵的順序。
// 重複的日期鍵合併到同一天，重複的餐別鍵以後者為準。
func (p *MealPlan) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("meal_plan: %w", err)
	}

	var out MealPlan
	for dec.More() {
		date, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("meal_plan: %w", err)
		}
		idx := out.openDay(date)
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("meal_plan[%q]: %w", date, err)
		}
		for dec.More() {
			slot, err := readKey(dec)
			if err != nil {
				return fmt.Errorf("meal_plan[%q]: %w", date, err)
			}
			var entry DailyMealEntry
			if err := dec.Decode(&entry); err != nil {
				return fmt.Errorf("meal_plan[%q][%q]: %w", date, slot, err)
			}
			out.Days[idx].put(slot, entry)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fmt.Errorf("meal_plan[%q]: %w", date, err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("meal_plan: %w", err)
	}

	*p = out
	return nil
}

// UnmarshalJSON 四個必要欄位都必須是字串
func (e *DailyMealEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("entry must be an object")
	}

	var out DailyMealEntry
	required := []struct {
		key string
		dst *string
	}{
		{"recipe", &out.Recipe},
		{"reason", &out.Reason},
		{"materials", &out.Materials},
		{"url", &out.URL},
	}
	for _, f := range required {
		v, ok := raw[f.key]
		if !ok {
			return fmt.Errorf("missing field %q", f.key)
		}
		if err := json.Unmarshal(v, f.dst); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("field %q must be a string", f.key)
		}
	}
	optional := []struct {
		key string
		dst *string
	}{
		{"calories", &out.Calories},
		{"cost", &out.Cost},
	}
	for _, f := range optional {
		if v, ok := raw[f.key]; ok {
			if err := json.Unmarshal(v, f.dst); err != nil {
				return fmt.Errorf("field %q must be a string", f.key)
			}
		}
	}

	*e = out
	return nil
}

// MarshalJSON nil 也輸出為空陣列
func (s MaterialsSummary) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return encodeNoEscape([]string(s))
}

// UnmarshalJSON 空陣列還原為 nil，與解析器的輸出一致
func (s *MaterialsSummary) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	if len(lines) == 0 {
		*s = nil
		return nil
	}
	*s = lines
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := encodeNoEscape(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

func encodeNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
