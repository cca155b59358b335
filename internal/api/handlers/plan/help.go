package plan

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var helpSteps = []string{
	"要望を request に記入してください。",
	"開始日を start_date (YYYY-MM-DD) で指定してください。",
	"食事の種類を meal_types で選択してください。",
	"主食の比重を ratios で調整してください。",
	"必要であればユーザー情報を profile に入力してください。",
	"POST /api/v1/plans/generate で献立を作成します。",
	"生成された献立を保存する場合は POST /api/v1/plans/save を呼び出してください。",
	"GET /api/v1/view でカレンダー形式の献立が表示されます。",
	"各食事の詳細を見るには POST /api/v1/view/detail に日付と食事を指定してください。",
	"保存した献立を読み込むには POST /api/v1/plans/load に JSON ファイルをアップロードしてください。",
}

// Help 使い方
func Help(c *gin.Context) {
	c.JSON(http.StatusOK, HelpResponse{
		Title: "使い方",
		Steps: helpSteps,
	})
}
