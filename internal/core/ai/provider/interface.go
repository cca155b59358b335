package provider

import (
	"context"
)

// Generator 定義語言模型提供者介面：輸入提示詞，返回純文字
type Generator interface {
	// Generate 生成文字回應
	Generate(ctx context.Context, prompt string) (string, error)

	// Model 當前使用的模型名稱
	Model() string

	// Close 關閉提供者連接
	Close() error
}

// Params 生成參數
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// Func 將普通函式轉成 Generator，方便測試與組裝
type Func func(ctx context.Context, prompt string) (string, error)

// Generate 呼叫函式本身
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Model 固定返回 "func"
func (f Func) Model() string { return "func" }

// Close 無資源可釋放
func (f Func) Close() error { return nil }
