package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const (
	categoryRankingPath = "/services/api/Recipe/CategoryRanking/20170426"
	rankingElements     = "recipeTitle,recipeUrl,recipeMaterial,recipeCost"
)

// RakutenClient 楽天レシピ カテゴリ別ランキング API 客戶端
type RakutenClient struct {
	client *resty.Client
	appID  string
	hits   int
}

type rankingResponse struct {
	Result []Candidate `json:"result"`
}

// NewRakutenClient 創建楽天レシピ客戶端
func NewRakutenClient(cfg config.RecipeProviderConfig) *RakutenClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &RakutenClient{
		client: client,
		appID:  cfg.AppID,
		hits:   cfg.Hits,
	}
}

// SearchByCategory 取得指定カテゴリ的排行食譜。非 2xx 視為錯誤，不重試。
func (c *RakutenClient) SearchByCategory(ctx context.Context, categoryID string) ([]Candidate, error) {
	params := map[string]string{
		"applicationId": c.appID,
		"categoryId":    strings.TrimSpace(categoryID),
		"format":        "json",
		"elements":      rankingElements,
	}
	if c.hits > 0 {
		params["hits"] = strconv.Itoa(c.hits)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(categoryRankingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Rakuten: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("Rakuten API returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var body rankingResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to parse Rakuten response: %w", err)
	}
	return body.Result, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
