package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kondate-planner/internal/core/ai/provider"
	"kondate-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	model  string
	params provider.Params
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	TopP        float32   `json:"top_p,omitempty"`
	TopK        int32     `json:"top_k,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端，baseURL 為空時使用官方端點
func NewClient(apiKey, model, baseURL string, params provider.Params) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey)).
		SetHeader("HTTP-Referer", "https://kondate-planner.local").
		SetHeader("X-Title", "Kondate Planner")

	return &Client{
		client: client,
		model:  model,
		params: params,
	}, nil
}

// Generate 生成回應。提示詞原樣送出，換行屬於版面的一部分。
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:   c.params.MaxOutputTokens,
		Temperature: c.params.Temperature,
		TopP:        c.params.TopP,
		TopK:        c.params.TopK,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.IsError() {
		var apiErr Error
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("OpenRouter API error (status %d)", resp.StatusCode())
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogDebug("OpenRouter response received",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return content, nil
}

// Model 模型名稱
func (c *Client) Model() string {
	return c.model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
