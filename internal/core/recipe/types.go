package recipe

import "context"

// Candidate 楽天レシピ API 返回的一筆候選食譜，JSON 欄位沿用 API 原名
type Candidate struct {
	Title       string   `json:"recipeTitle"`
	URL         string   `json:"recipeUrl,omitempty"`
	Ingredients []string `json:"recipeMaterial"`
	Cost        string   `json:"recipeCost,omitempty"`
}

// Provider 依カテゴリ ID 搜尋食譜
type Provider interface {
	SearchByCategory(ctx context.Context, categoryID string) ([]Candidate, error)
}

// CacheAware 帶快取的 Provider。
// Lookup 只查快取，不發出請求；Fetch 略過快取查詢直接請求並回寫快取。
type CacheAware interface {
	Provider
	Lookup(ctx context.Context, categoryID string) ([]Candidate, bool)
	Fetch(ctx context.Context, categoryID string) ([]Candidate, error)
}
