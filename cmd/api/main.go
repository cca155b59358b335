package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kondate-planner/internal/api"
	"kondate-planner/internal/app"
	"kondate-planner/internal/core/queue"
	"kondate-planner/internal/core/session"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("rakuten_app_id", config.MaskAPIKey(cfg.RecipeProvider.AppID)),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	components, err := app.Build(context.Background(), cfg, app.Options{})
	if err != nil {
		common.LogFatal("Failed to initialize services", zap.Error(err))
	}
	defer components.Close()

	queueManager := queue.NewManager(cfg.Queue)
	defer queueManager.Close()

	sessions := session.NewRegistry(cfg.Session.MaxSessions, cfg.Session.TTL)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Planner:    components.Planner,
		Queue:      queueManager,
		Sessions:   sessions,
		Cache:      components.Cache,
		Categories: components.Categories,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 關閉超時不短於請求超時
	shutdownTimeout := 5 * time.Second
	if cfg.Server.RequestTimeout > shutdownTimeout {
		shutdownTimeout = cfg.Server.RequestTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
	}

	common.LogInfo("Server exited")
}
