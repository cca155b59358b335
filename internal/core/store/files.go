package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const fileTimestamp = "20060102_150405"

// SavedFiles 存檔路徑
type SavedFiles struct {
	JSONPath string `json:"json_path"`
	HTMLPath string `json:"html_path"`
}

// SaveToDir 將獻立寫入 meal_plan_<時間>.json 與 .html
func SaveToDir(dir string, p plan.MealPlan, summary plan.MaterialsSummary, now time.Time) (SavedFiles, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SavedFiles{}, fmt.Errorf("create save dir: %w", err)
	}

	base := "meal_plan_" + now.Format(fileTimestamp)
	files := SavedFiles{
		JSONPath: filepath.Join(dir, base+".json"),
		HTMLPath: filepath.Join(dir, base+".html"),
	}

	doc, err := Serialize(p, summary)
	if err != nil {
		return SavedFiles{}, err
	}
	if err := os.WriteFile(files.JSONPath, doc, 0644); err != nil {
		return SavedFiles{}, fmt.Errorf("write json: %w", err)
	}

	report, err := RenderReportBytes(p, summary)
	if err != nil {
		return SavedFiles{}, fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(files.HTMLPath, report, 0644); err != nil {
		return SavedFiles{}, fmt.Errorf("write html: %w", err)
	}

	common.LogInfo("献立を保存しました",
		zap.String("json", files.JSONPath),
		zap.String("html", files.HTMLPath),
		zap.Int("days", len(p.Days)),
	)
	return files, nil
}

// LoadFile 讀取並還原存檔
func LoadFile(path string) (plan.MealPlan, plan.MaterialsSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan.MealPlan{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Deserialize(data)
}
