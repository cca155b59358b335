package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kondate-planner/internal/core/category"
	"kondate-planner/internal/core/recipe"
)

// RecommendInput 推薦カテゴリ所需的輸入
type RecommendInput struct {
	UserRequest string
	StartDate   time.Time
	Ratios      Ratios
	Preferences []string
}

// Recommender 請模型從カテゴリ表挑出相關的カテゴリ ID
type Recommender struct {
	llm   TextGenerator
	table *category.Table
}

// NewRecommender 創建推薦器
func NewRecommender(llm TextGenerator, table *category.Table) *Recommender {
	return &Recommender{llm: llm, table: table}
}

// Prompt 組出推薦用提示詞
func (r *Recommender) Prompt(in RecommendInput) string {
	var b strings.Builder
	b.WriteString("以下は食材とそのカテゴリIDのリストです（カテゴリID: 名前）：\n")
	b.WriteString(r.table.PromptList())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "ユーザーの要求: %s\n", in.UserRequest)
	if len(in.Preferences) > 0 {
		fmt.Fprintf(&b, "食事の注意点: %s\n", strings.Join(in.Preferences, ", "))
	}
	fmt.Fprintf(&b, "開始日: %s\n", FormatStartDate(in.StartDate))
	fmt.Fprintf(&b, "主食の比重: ごはんもの %d%%, パン %d%%, 麺類 %d%%\n\n", in.Ratios.Rice, in.Ratios.Bread, in.Ratios.Noodle)
	fmt.Fprintf(&b, "この要求と日付、曜日に合う食材・料理を%d個選び、必ずそのカテゴリIDをカンマ区切りで出力してください。\n", recipe.DefaultMaxCategories)
	b.WriteString("日付と曜日から季節や特別なイベント（例：お正月、クリスマス、ハロウィンなど）を考慮し、適切な食材を選んでください。\n")
	b.WriteString("また、それ以外は絶対に出力しないでください。\n")
	b.WriteString("出力形式: カテゴリID1,カテゴリID2,カテゴリID3")
	return b.String()
}

// Recommend 呼叫模型並原樣返回輸出，格式由 RecipeCollector 處理
func (r *Recommender) Recommend(ctx context.Context, in RecommendInput) (string, error) {
	return r.llm.Generate(ctx, StageRecommend, r.Prompt(in))
}
