package presenter

import (
	"fmt"
	"io"
	"strings"
)

// WriteText 以純文字輸出頁面（CLI 用）
func WriteText(w io.Writer, page Page) error {
	var b strings.Builder
	switch page.Kind {
	case PageGrid:
		writeGrid(&b, page.Grid)
	case PageDetail:
		writeDetail(&b, page.Detail)
	case PageNotFound:
		fmt.Fprintf(&b, "%s\n[%s]\n", page.NotFound.Message, page.NotFound.Back)
	default:
		b.WriteString(page.Message)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeGrid(b *strings.Builder, g *GridView) {
	for _, day := range g.Days {
		fmt.Fprintf(b, "== %s ==\n", day.Date)
		for _, meal := range day.Meals {
			fmt.Fprintf(b, "[%s] %s\n", meal.Slot, meal.Recipe)
			if meal.Calories != "" || meal.Cost != "" {
				fmt.Fprintf(b, "  カロリー: %s / コスト: %s\n", meal.Calories, meal.Cost)
			}
		}
		if g.ShowTotals {
			fmt.Fprintf(b, "1日合計: %dkcal, %d円\n", day.Calories, day.Cost)
		}
		b.WriteByte('\n')
	}
	if g.ShowTotals {
		b.WriteString("== 1週間の合計 ==\n")
		fmt.Fprintf(b, "総カロリー: %dkcal\n", g.Calories)
		fmt.Fprintf(b, "総コスト: %d円\n\n", g.Cost)
	}
	if len(g.Summary) > 0 {
		b.WriteString("== 1週間分の材料まとめ ==\n")
		for _, line := range g.Summary {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
}

func writeDetail(b *strings.Builder, d *DetailView) {
	fmt.Fprintf(b, "%s - %s\n", d.Date, d.Slot)
	fmt.Fprintf(b, "レシピ: %s\n", d.Entry.Recipe)
	fmt.Fprintf(b, "理由: %s\n", d.Entry.Reason)
	fmt.Fprintf(b, "材料: %s\n", d.Entry.Materials)
	if d.Entry.Calories != "" {
		fmt.Fprintf(b, "カロリー: %s\n", d.Entry.Calories)
	}
	if d.Entry.Cost != "" {
		fmt.Fprintf(b, "コスト: %s\n", d.Entry.Cost)
	}
	fmt.Fprintf(b, "URL: %s\n", d.Entry.URL)
}
