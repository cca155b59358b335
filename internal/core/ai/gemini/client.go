package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kondate-planner/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoContent 模型沒有返回任何文字
var ErrNoContent = errors.New("gemini: no content generated")

// Client Google Gemini 客戶端
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, apiKey, modelName string, params provider.Params) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	if params.Temperature > 0 {
		model.SetTemperature(params.Temperature)
	}
	if params.TopP > 0 {
		model.SetTopP(params.TopP)
	}
	if params.TopK > 0 {
		model.SetTopK(params.TopK)
	}
	if params.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(params.MaxOutputTokens)
	}

	return &Client{client: client, model: model, name: modelName}, nil
}

// Generate 送出提示詞並返回第一個候選的全部文字
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// responseText 串接第一個候選中的文字片段
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoContent
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", ErrNoContent
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrNoContent
	}
	return b.String(), nil
}

// Model 模型名稱
func (c *Client) Model() string {
	return c.name
}

// Close 關閉底層客戶端
func (c *Client) Close() error {
	return c.client.Close()
}
