package planner

import (
	"context"
	"time"

	"kondate-planner/internal/core/category"
	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 串接推薦、收集、組合與解析的獻立生成服務
type Service struct {
	recommender *Recommender
	collector   RecipeCollector
	composer    *Composer
	labels      plan.Labels
}

// NewService 創建獻立生成服務
func NewService(llm TextGenerator, table *category.Table, collector RecipeCollector) *Service {
	return &Service{
		recommender: NewRecommender(llm, table),
		collector:   collector,
		composer:    NewComposer(llm, plan.DefaultLabels),
		labels:      plan.DefaultLabels,
	}
}

// Generate 執行一次完整的獻立生成。
// 找不到食譜時返回 ErrNoRecipes，解析結果為空時返回 ErrEmptyPlan；
// 這兩種情況下 Result 仍帶有除錯資訊。
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{}
	defer func() {
		result.Debug.DurationMS = time.Since(start).Milliseconds()
	}()

	var preferences []string
	if req.Profile != nil {
		daily, err := nutrition.EstimateDailyCalories(*req.Profile)
		if err != nil {
			return nil, err
		}
		targets := nutrition.MealTargets(daily)
		result.Debug.Targets = &targets
		preferences = req.Profile.DietaryPreferences
	}

	req.progress(StageRecommend, 25)
	ids, err := s.recommender.Recommend(ctx, RecommendInput{
		UserRequest: req.UserRequest,
		StartDate:   req.StartDate,
		Ratios:      req.Ratios,
		Preferences: preferences,
	})
	if err != nil {
		return nil, err
	}
	result.Debug.CategoryIDs = ids

	req.progress(StageCollect, 50)
	collection, err := s.collector.Collect(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.Debug.Attempted = collection.Attempted
	result.Debug.FailedCategories = collection.Failed
	result.Debug.RecipeCount = len(collection.Recipes)
	if collection.Empty() {
		common.LogWarn("No recipes collected",
			zap.String("category_ids", ids),
			zap.Int("failed", len(collection.Failed)),
		)
		return result, common.ErrNoRecipes
	}

	req.progress(StageCompose, 75)
	text, err := s.composer.Compose(ctx, ComposeInput{
		Candidates:  collection.Recipes,
		UserRequest: req.UserRequest,
		StartDate:   req.StartDate,
		MealTypes:   req.MealTypes,
		Ratios:      req.Ratios,
		Targets:     result.Debug.Targets,
		Preferences: preferences,
	})
	if err != nil {
		return nil, err
	}
	result.Debug.MealPlanText = text

	req.progress(StageParse, 90)
	result.Plan, result.Summary = plan.NewParser(req.MealTypes, s.labels).Parse(text)
	if result.Plan.IsEmpty() {
		common.LogWarn("Parsed meal plan is empty",
			zap.Int("text_length", len(text)),
			zap.Int("summary_lines", len(result.Summary)),
		)
		return result, common.ErrEmptyPlan
	}

	req.progress(StageDone, 100)
	common.LogInfo(common.MsgPlanGenerated,
		zap.Int("days", len(result.Plan.Days)),
		zap.Int("summary_lines", len(result.Summary)),
		zap.Int("recipes", result.Debug.RecipeCount),
		zap.Duration("耗時", time.Since(start)),
	)
	return result, nil
}
