// Package app 依設定組裝獻立生成所需的各個服務
package app

import (
	"context"
	"fmt"

	"kondate-planner/internal/core/ai/provider"
	"kondate-planner/internal/core/ai/service"
	"kondate-planner/internal/core/cache"
	"kondate-planner/internal/core/category"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/ratelimit"
	"kondate-planner/internal/core/recipe"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Components 組裝完成的服務
type Components struct {
	Categories *category.Table
	Cache      cache.Store
	LLM        *service.Service
	Collector  *recipe.Collector
	Planner    *planner.Service
}

// Options 可替換的依賴，測試時使用；零值表示依設定建立
type Options struct {
	Generator provider.Generator
	Provider  recipe.Provider
}

// LoadCategories 讀取類別表；未設定路徑或讀取失敗時使用內建表
func LoadCategories(path string) *category.Table {
	if path == "" {
		return category.Default()
	}
	table, err := category.Load(path)
	if err != nil || table.Len() == 0 {
		common.LogWarn("類別表讀取失敗，改用內建表",
			zap.String("path", path),
			zap.Error(err),
		)
		return category.Default()
	}
	common.LogInfo("類別表已載入",
		zap.String("path", path),
		zap.Int("categories", table.Len()),
	)
	return table
}

// Build 依設定建立所有服務
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	c := &Components{
		Categories: LoadCategories(cfg.Category.DataPath),
	}

	store, err := cache.NewStore(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = store

	generator := opts.Generator
	if generator == nil {
		generator, err = service.NewGenerator(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
		}
	}
	c.LLM = service.NewService(generator, cfg.LLM)

	source := opts.Provider
	if source == nil {
		source = recipe.NewRakutenClient(cfg.RecipeProvider)
	}
	c.Collector = recipe.NewCollector(
		recipe.NewCachedProvider(source, c.Cache),
		ratelimit.NewGate(cfg.RecipeProvider.MinInterval, nil),
		cfg.RecipeProvider,
	)

	c.Planner = planner.NewService(c.LLM, c.Categories, c.Collector)

	common.LogInfo("Services initialized",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("model", c.LLM.Model()),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Int("categories", c.Categories.Len()),
		zap.Duration("recipe_min_interval", cfg.RecipeProvider.MinInterval),
	)
	return c, nil
}

// Close 釋放 AI 客戶端與快取
func (c *Components) Close() {
	if c.LLM != nil {
		if err := c.LLM.Close(); err != nil {
			common.LogWarn("Failed to close AI provider", zap.Error(err))
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			common.LogWarn("Failed to close cache", zap.Error(err))
		}
	}
}
