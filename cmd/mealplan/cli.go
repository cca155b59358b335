package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kondate-planner/internal/app"
	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/presenter"
	"kondate-planner/internal/core/store"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"
)

const dateLayout = "2006-01-02"

var stageLabels = map[string]string{
	planner.StageRecommend: "カテゴリを選んでいます",
	planner.StageCollect:   "レシピを集めています",
	planner.StageCompose:   "献立を作成しています",
	planner.StageParse:     "献立を読み取っています",
	planner.StageDone:      "完了",
}

type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
	build      func(ctx context.Context, cfg *config.Config) (*app.Components, error)
	now        func() time.Time
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) < 1 {
		c.usage()
		return 2
	}

	var err error
	switch args[0] {
	case "generate":
		err = c.generate(ctx, args[1:])
	case "show":
		err = c.show(args[1:])
	case "report":
		err = c.report(args[1:])
	case "help", "-h", "--help":
		c.usage()
		return 0
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", args[0])
		c.usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		ce := common.AsCustomError(err)
		fmt.Fprintf(c.stderr, "エラー: %s\n", ce.Message)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

// flagError 旗標錯誤已由 FlagSet 輸出，只需決定結束碼
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return errUsage
}

func loadPlan(path string) (plan.MealPlan, plan.MaterialsSummary, error) {
	p, summary, err := store.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, summary, common.NewValidationError(fmt.Sprintf("ファイルが見つかりません: %s", path))
	}
	return p, summary, err
}

func (c *cli) usage() {
	fmt.Fprintln(c.stderr, "Usage: mealplan <command> [arguments]")
	fmt.Fprintln(c.stderr, "\nCommands:")
	fmt.Fprintln(c.stderr, "  generate   要望から1週間分の献立を作成して保存する")
	fmt.Fprintln(c.stderr, "  show       保存した献立を表示する (show FILE [-date D -slot S])")
	fmt.Fprintln(c.stderr, "  report     保存した献立から HTML レポートを作る (report FILE [-o OUT])")
}

// parseInterspersed 允許旗標出現在位置參數之後
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *cli) generate(ctx context.Context, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	request := fs.String("request", "", "献立への要望")
	start := fs.String("start", "", "開始日 (YYYY-MM-DD、省略時は今日)")
	meals := fs.String("meals", strings.Join(cfg.Planner.MealTypes, ","), "食事の種類（カンマ区切り）")
	rice := fs.Int("rice", cfg.Planner.RiceRatio, "ごはんものの比重 (0-100)")
	bread := fs.Int("bread", cfg.Planner.BreadRatio, "パンの比重 (0-100)")
	noodle := fs.Int("noodle", cfg.Planner.NoodleRatio, "麺類の比重 (0-100)")
	out := fs.String("out", cfg.Storage.SaveDir, "保存先ディレクトリ")
	gender := fs.String("gender", nutrition.GenderOther, "性別 (男性/女性/その他)")
	age := fs.Int("age", 0, "年齢（指定するとカロリー目安を計算）")
	height := fs.Float64("height", 0, "身長 (cm)")
	weight := fs.Float64("weight", 0, "体重 (kg)")
	activity := fs.String("activity", nutrition.ActivityNormal, "活動レベル (低い/普通/高い)")
	prefs := fs.String("prefs", "", "食事の注意点（カンマ区切り）")
	debug := fs.Bool("debug", false, "デバッグ情報を表示する")
	verbose := fs.Bool("v", false, "ログを出力する")
	if err := fs.Parse(args); err != nil {
		return flagError(err)
	}

	if *verbose {
		if err := common.InitLogger(cfg.LogLevel); err != nil {
			return err
		}
		defer common.Sync()
	}

	req := planner.Request{
		UserRequest: *request,
		MealTypes:   splitList(*meals),
		Ratios:      planner.Ratios{Rice: *rice, Bread: *bread, Noodle: *noodle},
		OnProgress: func(stage string, percent int) {
			fmt.Fprintf(c.stderr, "[%3d%%] %s\n", percent, stageLabels[stage])
		},
	}
	if *start == "" {
		now := c.now()
		req.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		d, err := time.ParseInLocation(dateLayout, *start, time.Local)
		if err != nil {
			return common.NewValidationError("開始日は YYYY-MM-DD 形式で指定してください")
		}
		req.StartDate = d
	}
	if *age > 0 {
		req.Profile = &nutrition.Profile{
			Gender:             *gender,
			Age:                *age,
			HeightCM:           *height,
			WeightKG:           *weight,
			ActivityLevel:      *activity,
			DietaryPreferences: splitList(*prefs),
		}
	}

	components, err := c.build(ctx, cfg)
	if err != nil {
		return common.NewValidationError(fmt.Sprintf("初期化に失敗しました: %v", err))
	}
	defer components.Close()

	result, err := components.Planner.Generate(ctx, req)
	if result != nil && *debug {
		c.writeDebug(result.Debug)
	}
	if err != nil {
		return err
	}

	page := presenter.Render(result.Plan, result.Summary, presenter.GridSelector())
	if err := presenter.WriteText(c.stdout, page); err != nil {
		return err
	}

	files, err := store.SaveToDir(*out, result.Plan, result.Summary, c.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "献立を保存しました: %s\n", files.JSONPath)
	fmt.Fprintf(c.stdout, "レポート: %s\n", files.HTMLPath)
	return nil
}

func (c *cli) writeDebug(d planner.DebugInfo) {
	fmt.Fprintln(c.stderr, "== デバッグ情報 ==")
	fmt.Fprintf(c.stderr, "カテゴリID: %s\n", d.CategoryIDs)
	fmt.Fprintf(c.stderr, "取得したレシピ数: %d\n", d.RecipeCount)
	if len(d.FailedCategories) > 0 {
		fmt.Fprintf(c.stderr, "失敗したカテゴリ: %s\n", strings.Join(d.FailedCategories, ","))
	}
	if d.Targets != nil {
		fmt.Fprintf(c.stderr, "1日の推奨カロリー: %dkcal\n", d.Targets.Daily)
	}
	if d.MealPlanText != "" {
		fmt.Fprintf(c.stderr, "生成された献立:\n%s\n", d.MealPlanText)
	}
}

func (c *cli) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	date := fs.String("date", "", "詳細を表示する日付")
	slot := fs.String("slot", "", "詳細を表示する食事")
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(files) != 1 {
		fmt.Fprintln(c.stderr, "Usage: mealplan show FILE [-date D -slot S]")
		return errUsage
	}

	p, summary, err := loadPlan(files[0])
	if err != nil {
		return err
	}

	view := presenter.GridSelector()
	if *date != "" || *slot != "" {
		view = presenter.DetailSelector(*date, *slot)
	}
	return presenter.WriteText(c.stdout, presenter.Render(p, summary, view))
}

func (c *cli) report(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	out := fs.String("o", "", "出力する HTML ファイル（省略時は FILE の拡張子を .html に変更）")
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(files) != 1 {
		fmt.Fprintln(c.stderr, "Usage: mealplan report FILE [-o OUT.html]")
		return errUsage
	}

	p, summary, err := loadPlan(files[0])
	if err != nil {
		return err
	}
	page, err := store.RenderReportBytes(p, summary)
	if err != nil {
		return err
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(files[0], filepath.Ext(files[0])) + ".html"
	}
	if err := os.WriteFile(target, page, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(c.stdout, "レポートを作成しました: %s\n", target)
	return nil
}
