package cache

import (
	"context"
	"fmt"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 位元組快取介面
type Store interface {
	// Get 返回值、是否命中與錯誤
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() Stats
	Close() error
}

// Stats 快取統計
type Stats struct {
	Backend string `json:"backend"`
	Size    int    `json:"size"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
}

// NewStore 依設定建立快取，backend 為 none 時返回 nil
func NewStore(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		common.LogInfo("Cache disabled")
		return nil, nil
	case "memory":
		common.LogInfo("快取管理員已初始化",
			zap.String("backend", cfg.Backend),
			zap.Int("最大容量", cfg.MaxSize),
			zap.Duration("存活時間", cfg.TTL),
		)
		return NewMemoryStore(cfg.MaxSize, cfg.TTL), nil
	case "redis":
		store, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		common.LogInfo("快取管理員已初始化",
			zap.String("backend", cfg.Backend),
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("存活時間", cfg.TTL),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
