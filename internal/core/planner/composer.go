package planner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/recipe"
)

const unknownURL = "URL不明"

// ComposeInput 組合獻立所需的輸入
type ComposeInput struct {
	Candidates  []recipe.Candidate
	UserRequest string
	StartDate   time.Time
	MealTypes   []string
	Ratios      Ratios
	Targets     *nutrition.Targets
	Preferences []string
}

// Composer 請模型從候選食譜組出一週獻立
type Composer struct {
	llm    TextGenerator
	labels plan.Labels
}

// NewComposer 創建組合器；labels 需與解析端一致
func NewComposer(llm TextGenerator, labels plan.Labels) *Composer {
	return &Composer{llm: llm, labels: labels}
}

// FormatCandidates 依序編號（從 1 開始）列出候選食譜
func FormatCandidates(candidates []recipe.Candidate) string {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		url := c.URL
		if url == "" {
			url = unknownURL
		}
		lines[i] = strconv.Itoa(i+1) + ". " + c.Title +
			" - 材料: " + strings.Join(c.Ingredients, ", ") +
			" - URL: " + url
	}
	return strings.Join(lines, "\n")
}

var constraints = []string{
	"必ず開始日から7日分の献立を出力してください。",
	"似た料理は絶対出さないでください。",
	"前日の残りなどは考慮しないでください。",
	"材料まとめでは、同じ材料を使用する場合はまとめて記載してください。ステップバイステップで、表記の重複がないことを確認してください。",
	"材料の量は、レシピに記載がない場合は適切な量を推定してください。「適量」という表現は禁止です。",
	"朝食は簡単に準備できるものを選んでください。",
	"夕食は朝昼に比べ手が込んでいるものを選んでください。",
	"主食そのもの、または主食にあうおかずなどを選択してください。",
	"絶対にサラダやスイーツ、味噌汁などを選ばないでください。",
	"開始日から季節や特別なイベント、曜日を考慮し、適切なレシピを選んでください。",
}

// Prompt 組出獻立用提示詞
func (c *Composer) Prompt(in ComposeInput) string {
	recipes := FormatCandidates(in.Candidates)
	mealTypes := strings.Join(in.MealTypes, ", ")
	withEstimates := in.Targets != nil

	var b strings.Builder
	fmt.Fprintf(&b, "ユーザーの要求: %s\n", in.UserRequest)
	if len(in.Preferences) > 0 {
		fmt.Fprintf(&b, "食事の注意点: %s\n", strings.Join(in.Preferences, ", "))
	}
	fmt.Fprintf(&b, "開始日: %s\n", FormatStartDate(in.StartDate))
	fmt.Fprintf(&b, "食事タイプ: %s\n", mealTypes)
	fmt.Fprintf(&b, "主食の比重: ごはんもの %d%%, パン %d%%, 麺類 %d%%\n", in.Ratios.Rice, in.Ratios.Bread, in.Ratios.Noodle)
	if withEstimates {
		fmt.Fprintf(&b, "1日の推奨カロリー摂取量: %dkcal\n", in.Targets.Daily)
		b.WriteString("各食事のカロリー目安:\n")
		for _, m := range in.Targets.Meals {
			fmt.Fprintf(&b, "%s: %dkcal\n", m.Slot, m.Calories)
		}
	}

	b.WriteString("\n以下は、その要求に基づいて選ばれた食材から作れるレシピのリストです：\n")
	b.WriteString(recipes)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "これらのレシピから、ユーザーの要求に最も適した1週間分の献立（%s）を作成してください。\n", mealTypes)
	if withEstimates {
		b.WriteString("各食事について、条件をもとに1日ごとにステップバイステップでレシピを選定し、その理由、材料、推定カロリー、推定コスト、URLを記載してください。\n")
	} else {
		b.WriteString("各食事について、条件をもとに1日ごとにステップバイステップでレシピを選定し、その理由、材料、URLを記載してください。\n")
	}
	b.WriteString("主食の比重に従ってレシピを選択してください。\n")
	b.WriteString("開始日から季節や特別なイベント（例：お正月、クリスマス、ハロウィンなど）、さらに曜日も考慮し、適切なレシピを選んでください。\n")
	b.WriteString("最後に、1週間分の献立で必要な材料の総まとめを作成してください。\n\n")

	b.WriteString("出力形式:\n**[日付] ([曜日]):**\n")
	for _, meal := range in.MealTypes {
		fmt.Fprintf(&b, "\n%s: [レシピNO].[レシピ名]\n", meal)
		fmt.Fprintf(&b, "%s: [選んだ理由]\n", c.labels.Reason)
		fmt.Fprintf(&b, "%s: [材料リスト]\n", c.labels.Materials)
		if withEstimates {
			fmt.Fprintf(&b, "%s: [AIによる推定カロリー]kcal\n", c.labels.Calories)
			fmt.Fprintf(&b, "%s: [AIによる推定コスト]円\n", c.labels.Cost)
		}
		fmt.Fprintf(&b, "%s: [レシピのURL]\n", c.labels.URL)
	}
	b.WriteString("\n...\n\n")
	fmt.Fprintf(&b, "## %s:\n\n", c.labels.SummaryMarker)
	for _, group := range []string{"肉・魚", "野菜", "調味料など"} {
		fmt.Fprintf(&b, "**%s:**\n[材料名]: [必要な量]\n\n", group)
	}
	b.WriteString("...\n\n条件:\n")
	for _, rule := range constraints {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	if withEstimates {
		b.WriteString("- 各レシピのカロリーとコストを推定し、記載してください。\n")
	}
	b.WriteString("\n全レシピリスト:\n")
	b.WriteString(recipes)
	return b.String()
}

// Compose 呼叫模型，不解析輸出
func (c *Composer) Compose(ctx context.Context, in ComposeInput) (string, error) {
	return c.llm.Generate(ctx, StageCompose, c.Prompt(in))
}
