// Package store 獻立的 JSON 存檔格式與 HTML 報告
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/pkg/common"
)

// Document 存檔的頂層結構
type Document struct {
	MealPlan         plan.MealPlan         `json:"meal_plan"`
	MaterialsSummary plan.MaterialsSummary `json:"materials_summary"`
}

// Serialize 輸出兩格縮排的 JSON，鍵的順序與獻立相同
func Serialize(p plan.MealPlan, summary plan.MaterialsSummary) ([]byte, error) {
	data, err := common.MarshalIndentNoEscape(Document{MealPlan: p, MaterialsSummary: summary})
	if err != nil {
		return nil, fmt.Errorf("serialize meal plan: %w", err)
	}
	return data, nil
}

// Deserialize 還原存檔。兩個頂層欄位缺少或型別錯誤、
// 或任一餐缺少必要欄位時返回 ErrMalformedDocument。
func Deserialize(data []byte) (plan.MealPlan, plan.MaterialsSummary, error) {
	var raw map[string]json.RawMessage
	if err := common.ParseJSONBytes(data, &raw); err != nil {
		return plan.MealPlan{}, nil, malformed(err)
	}
	if raw == nil {
		return plan.MealPlan{}, nil, malformed(fmt.Errorf("document must be an object"))
	}

	mp, err := field(raw, "meal_plan", '{')
	if err != nil {
		return plan.MealPlan{}, nil, err
	}
	ms, err := field(raw, "materials_summary", '[')
	if err != nil {
		return plan.MealPlan{}, nil, err
	}

	var p plan.MealPlan
	if err := json.Unmarshal(mp, &p); err != nil {
		return plan.MealPlan{}, nil, malformed(err)
	}
	var summary plan.MaterialsSummary
	if err := json.Unmarshal(ms, &summary); err != nil {
		return plan.MealPlan{}, nil, malformed(fmt.Errorf("materials_summary: %w", err))
	}

	return p, summary, nil
}

// field 取出頂層欄位並確認第一個字元（物件或陣列）
func field(raw map[string]json.RawMessage, key string, open byte) (json.RawMessage, error) {
	v, ok := raw[key]
	if !ok {
		return nil, malformed(fmt.Errorf("missing %s", key))
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != open {
		return nil, malformed(fmt.Errorf("%s has the wrong shape", key))
	}
	return v, nil
}

func malformed(err error) error {
	return common.ErrMalformedDocument.Wrap(err)
}
