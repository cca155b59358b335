package recipe

import (
	"context"
	"encoding/json"
	"fmt"

	"kondate-planner/internal/core/cache"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const cacheType = "recipe"

// CachedProvider 以 cache.Store 包裝 Provider。快取失敗只記錄，不影響請求。
type CachedProvider struct {
	next  Provider
	store cache.Store
}

// NewCachedProvider 創建帶快取的 Provider，store 為 nil 時不快取
func NewCachedProvider(next Provider, store cache.Store) *CachedProvider {
	return &CachedProvider{
		next:  next,
		store: store,
	}
}

// getCacheKey 生成緩存鍵
func getCacheKey(categoryID string) string {
	return fmt.Sprintf("%s:category:%s", cacheType, categoryID)
}

// Lookup 只查快取
func (p *CachedProvider) Lookup(ctx context.Context, categoryID string) ([]Candidate, bool) {
	if p.store == nil {
		return nil, false
	}
	key := getCacheKey(categoryID)
	data, ok, err := p.store.Get(ctx, key)
	if err != nil {
		common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		common.LogCacheMiss(cacheType, key)
		return nil, false
	}

	var recipes []Candidate
	if err := json.Unmarshal(data, &recipes); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	common.LogCacheHit(cacheType, key)
	return recipes, true
}

// Fetch 直接請求並回寫快取
func (p *CachedProvider) Fetch(ctx context.Context, categoryID string) ([]Candidate, error) {
	recipes, err := p.next.SearchByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if p.store != nil {
		key := getCacheKey(categoryID)
		data, err := json.Marshal(recipes)
		if err == nil {
			err = p.store.Set(ctx, key, data)
		}
		if err != nil {
			common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
		}
	}
	return recipes, nil
}

// SearchByCategory 先查快取，未命中才請求
func (p *CachedProvider) SearchByCategory(ctx context.Context, categoryID string) ([]Candidate, error) {
	if recipes, ok := p.Lookup(ctx, categoryID); ok {
		return recipes, nil
	}
	return p.Fetch(ctx, categoryID)
}
