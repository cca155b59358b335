package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{"朝食", "昼食", "夕食"}, DefaultLabels)

	tests := []struct {
		line string
		want Line
	}{
		{"**2024-03-01 (金):**", Line{Kind: DateHeading, Date: "2024-03-01"}},
		{"**2024年3月1日（金曜日）**", Line{Kind: DateHeading, Date: "2024年3月1日"}},
		{"## 2024-03-04 (月)", Line{Kind: DateHeading, Date: "2024-03-04"}},
		{"2024-03-01 (金)", Line{Kind: Unrecognized}},
		{"**朝食:** 1.目玉焼き (月曜の定番)", Line{Kind: SlotHeading, Slot: "朝食", Value: "1.目玉焼き (月曜の定番)"}},
		{"**おすすめ (和食)**", Line{Kind: Unrecognized}},
		{"朝食: 1.目玉焼き", Line{Kind: SlotHeading, Slot: "朝食", Value: "1.目玉焼き"}},
		{"夕食：12.鮭のムニエル", Line{Kind: SlotHeading, Slot: "夕食", Value: "12.鮭のムニエル"}},
		{"おやつ: 5.プリン", Line{Kind: Unrecognized}},
		{"朝食後に", Line{Kind: Unrecognized}},
		{"理由: 簡単だから", Line{Kind: ReasonField, Value: "簡単だから"}},
		{"材料:", Line{Kind: MaterialsField, Value: ""}},
		{"推定カロリー: 450kcal", Line{Kind: CaloriesField, Value: "450kcal"}},
		{"推定コスト: 300円", Line{Kind: CostField, Value: "300円"}},
		{"URL: http://example.com/1", Line{Kind: URLField, Value: "http://example.com/1"}},
		{"## 1週間分の材料まとめ:", Line{Kind: SummaryMarker}},
		{"**1週間分の材料まとめ**", Line{Kind: SummaryMarker}},
		{"バランスの良い献立です。", Line{Kind: Unrecognized}},
		{"朝食: **1.目玉焼き**", Line{Kind: SlotHeading, Slot: "朝食", Value: "**1.目玉焼き**"}},
		{"理由: **簡単**だから", Line{Kind: ReasonField, Value: "**簡単**だから"}},
		{"**理由:** **簡単**だから", Line{Kind: ReasonField, Value: "**簡単**だから"}},
		{"**Day 2: 2024-03-02 (土):**", Line{Kind: DateHeading, Date: "Day 2: 2024-03-02"}},
		{"**朝食: 1.目玉焼き (月曜の定番)**", Line{Kind: SlotHeading, Slot: "朝食", Value: "1.目玉焼き (月曜の定番)"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := c.Classify(tt.line)
			assert.Equal(t, tt.want.Kind, got.Kind, "kind %s", got.Kind)
			assert.Equal(t, tt.want.Date, got.Date)
			assert.Equal(t, tt.want.Slot, got.Slot)
			assert.Equal(t, tt.want.Value, got.Value)
		})
	}
}

func TestClassifyKeepsTrimmedRaw(t *testing.T) {
	c := NewClassifier(nil, DefaultLabels)
	got := c.Classify("  - 鶏もも肉 300g  ")
	assert.Equal(t, "- 鶏もも肉 300g", got.Raw)
	assert.Equal(t, Unrecognized, got.Kind)
}

func TestClassifierIgnoresBlankSlotLabels(t *testing.T) {
	c := NewClassifier([]string{"", "  ", "朝食"}, DefaultLabels)
	assert.Equal(t, Unrecognized, c.Classify(": 1.目玉焼き").Kind)
	assert.Equal(t, SlotHeading, c.Classify("朝食: 1.目玉焼き").Kind)
}
