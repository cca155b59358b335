package store

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"kondate-planner/internal/core/plan"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"isLink": isLink,
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>1週間分の献立</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; padding: 20px; }
h1, h2, h3 { color: #333; }
.meal { margin-bottom: 20px; }
.materials { background-color: #f4f4f4; padding: 10px; margin-top: 20px; }
</style>
</head>
<body>
<h1>1週間分の献立</h1>
{{- range .Plan.Days}}
<section class="day">
<h2>{{.Date}}</h2>
{{- range .Meals}}
<div class="meal" data-slot="{{.Slot}}">
<h3>{{.Slot}}: {{.Entry.Recipe}}</h3>
<p class="reason"><strong>理由:</strong> {{.Entry.Reason}}</p>
<p class="materials-line"><strong>材料:</strong> {{.Entry.Materials}}</p>
{{- if .Entry.Calories}}
<p class="calories"><strong>カロリー:</strong> {{.Entry.Calories}}</p>
{{- end}}
{{- if .Entry.Cost}}
<p class="cost"><strong>コスト:</strong> {{.Entry.Cost}}</p>
{{- end}}
{{- if isLink .Entry.URL}}
<p class="link"><a href="{{.Entry.URL}}" target="_blank">レシピを見る</a></p>
{{- else if .Entry.URL}}
<p class="link">{{.Entry.URL}}</p>
{{- end}}
</div>
{{- end}}
</section>
{{- end}}
{{- if .ShowTotals}}
<section class="totals">
<h2>1週間の合計</h2>
<p>総カロリー: {{.Totals.Calories}}kcal</p>
<p>総コスト: {{.Totals.Cost}}円</p>
</section>
{{- end}}
<h2>1週間分の材料まとめ</h2>
<div class="materials">
{{- range .Summary}}
<p>{{.}}</p>
{{- end}}
</div>
</body>
</html>
`))

type reportData struct {
	Plan       plan.MealPlan
	Summary    plan.MaterialsSummary
	Totals     plan.Totals
	ShowTotals bool
}

// RenderReport 輸出 HTML 報告，內容全部經過跳脫
func RenderReport(w io.Writer, p plan.MealPlan, summary plan.MaterialsSummary) error {
	return reportTemplate.Execute(w, reportData{
		Plan:       p,
		Summary:    summary,
		Totals:     plan.ComputeTotals(p),
		ShowTotals: plan.HasEstimates(p),
	})
}

// RenderReportBytes RenderReport 的位元組版本
func RenderReportBytes(p plan.MealPlan, summary plan.MaterialsSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, p, summary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isLink(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
