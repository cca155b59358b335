package api

import (
	"errors"
	"time"

	"kondate-planner/internal/api/handlers/health"
	planHandler "kondate-planner/internal/api/handlers/plan"
	"kondate-planner/internal/api/middleware"
	"kondate-planner/internal/core/cache"
	"kondate-planner/internal/core/category"
	"kondate-planner/internal/core/queue"
	"kondate-planner/internal/core/session"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Planner    planHandler.Generator
	Queue      *queue.Manager
	Sessions   *session.Registry
	Cache      cache.Store
	Categories *category.Table
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Planner == nil {
		return nil, errors.New("planner service is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session registry is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	categories := 0
	if deps.Categories != nil {
		categories = deps.Categories.Len()
	}
	healthOpts := health.Options{
		Version:    cfg.App.Version,
		Cache:      deps.Cache,
		Sessions:   deps.Sessions,
		Categories: categories,
	}
	var submitter planHandler.Submitter
	if deps.Queue != nil {
		healthOpts.Queue = deps.Queue
		submitter = deps.Queue
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(healthOpts)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	plans := planHandler.NewHandler(deps.Planner, submitter, cfg)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	api.GET("/help", planHandler.Help)

	stateful := api.Group("")
	stateful.Use(middleware.Session(deps.Sessions))
	{
		stateful.DELETE("/session", middleware.EndSession(deps.Sessions))

		planGroup := stateful.Group("/plans")
		{
			planGroup.POST("/generate", middleware.Deduplication(cfg.DedupWindow), plans.Generate)
			planGroup.GET("/current", plans.Current)
			planGroup.DELETE("/current", plans.Reset)
			planGroup.POST("/load", plans.Load)
			planGroup.POST("/save", plans.Save)
			planGroup.GET("/report", plans.Report)
		}

		viewGroup := stateful.Group("/view")
		{
			viewGroup.GET("", plans.View)
			viewGroup.POST("/grid", plans.ShowGrid)
			viewGroup.POST("/detail", plans.ShowDetail)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("queue_enabled", deps.Queue != nil),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int("categories", categories),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
