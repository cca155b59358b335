package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kondate-planner/internal/core/ai/gemini"
	"kondate-planner/internal/core/ai/openrouter"
	"kondate-planner/internal/core/ai/provider"
	"kondate-planner/internal/core/ratelimit"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務：為 Generator 加上逾時、速率限制與錯誤分類
type Service struct {
	generator provider.Generator
	gate      *ratelimit.Gate
	timeout   time.Duration
}

// NewGenerator 依設定選擇提供者
func NewGenerator(ctx context.Context, cfg *config.Config) (provider.Generator, error) {
	params := provider.Params{
		Temperature:     cfg.LLM.Temperature,
		TopP:            cfg.LLM.TopP,
		TopK:            cfg.LLM.TopK,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}

	switch cfg.LLM.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, params)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openrouter":
		client, err := openrouter.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.BaseURL, params)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// NewService 創建 AI 服務
func NewService(generator provider.Generator, cfg config.LLMConfig) *Service {
	common.LogInfo("AI 服務已初始化",
		zap.String("provider", cfg.Provider),
		zap.String("model", generator.Model()),
		zap.Duration("timeout", cfg.Timeout),
		zap.Float64("rps", cfg.RPS),
	)
	return &Service{
		generator: generator,
		gate:      ratelimit.NewRPSGate(cfg.RPS),
		timeout:   cfg.Timeout,
	}
}

// Generate 呼叫模型並去掉前後空白。
// 失敗一律包成 ErrUpstreamUnavailable；呼叫端取消時返回 ctx 的錯誤。
func (s *Service) Generate(ctx context.Context, stage, prompt string) (string, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return "", err
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.generator.Generate(callCtx, prompt)
	common.LogAICall(stage, time.Since(start), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", common.ErrUpstreamUnavailable.Wrap(fmt.Errorf("%s: %w", stage, err))
	}
	return strings.TrimSpace(text), nil
}

// Model 模型名稱
func (s *Service) Model() string {
	return s.generator.Model()
}

// Close 關閉提供者
func (s *Service) Close() error {
	return s.generator.Close()
}
