package recipe

import (
	"context"
	"strings"
	"time"

	"kondate-planner/internal/core/ratelimit"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxCategories 一次收集最多處理的カテゴリ數
const DefaultMaxCategories = 20

// 全形逗號、読点與換行視同逗號
var separators = strings.NewReplacer("，", ",", "、", ",", "\n", ",")

// Collection 一次收集的結果
type Collection struct {
	Recipes   []Candidate `json:"recipes"`
	Attempted []string    `json:"attempted"`
	Failed    []string    `json:"failed"`
}

// Empty 沒有任何食譜。與錯誤不同，代表「找不到」。
func (c Collection) Empty() bool {
	return len(c.Recipes) == 0
}

// Collector 依カテゴリ ID 清單收集候選食譜。
// 所有對外請求都經過同一個 Gate，快取命中不佔用時段。
type Collector struct {
	provider      Provider
	gate          *ratelimit.Gate
	timeout       time.Duration
	maxCategories int
	concurrency   int
}

// NewCollector 創建收集器
func NewCollector(provider Provider, gate *ratelimit.Gate, cfg config.RecipeProviderConfig) *Collector {
	c := &Collector{
		provider:      provider,
		gate:          gate,
		timeout:       cfg.Timeout,
		maxCategories: cfg.MaxCategories,
		concurrency:   cfg.Concurrency,
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.maxCategories <= 0 {
		c.maxCategories = DefaultMaxCategories
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}
	return c
}

// ParseCategoryIDs 將模型輸出切成カテゴリ ID。
// 先取前 limit 個 token 再去掉空白 token；limit <= 0 表示不限。
func ParseCategoryIDs(raw string, limit int) []string {
	tokens := strings.Split(separators.Replace(raw), ",")
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			ids = append(ids, t)
		}
	}
	return ids
}

// Collect 依序收集每個カテゴリ的食譜。
// 單一カテゴリ失敗只記入 Failed；只有 ctx 被取消時返回錯誤。
func (c *Collector) Collect(ctx context.Context, raw string) (Collection, error) {
	ids := ParseCategoryIDs(raw, c.maxCategories)
	results := make([][]Candidate, len(ids))
	failed := make([]bool, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			recipes, err := c.fetch(ctx, id)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed[i] = true
				return nil
			}
			results[i] = recipes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Collection{}, err
	}

	out := Collection{Attempted: ids}
	for i, recipes := range results {
		if failed[i] {
			out.Failed = append(out.Failed, ids[i])
			continue
		}
		out.Recipes = append(out.Recipes, recipes...)
	}

	common.LogInfo("食譜收集完成",
		zap.Int("categories", len(ids)),
		zap.Int("failed", len(out.Failed)),
		zap.Int("recipes", len(out.Recipes)),
	)
	return out, nil
}

func (c *Collector) fetch(ctx context.Context, id string) ([]Candidate, error) {
	search := c.provider.SearchByCategory
	if cached, ok := c.provider.(CacheAware); ok {
		if recipes, hit := cached.Lookup(ctx, id); hit {
			return recipes, nil
		}
		search = cached.Fetch
	}

	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	recipes, err := search(callCtx, id)
	common.LogProviderCall(id, len(recipes), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}
