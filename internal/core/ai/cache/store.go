package cache

import (
	"context"
	"fmt"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Store 已驗證食譜回應的快取後端
type Store interface {
	// Get 取得快取值；未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)

	// Set 寫入快取值
	Set(ctx context.Context, key, value string) error

	// Stats 快取統計
	Stats() map[string]interface{}

	// Close 釋放資源
	Close() error
}

// NewStore 依設定建立快取後端；停用時回傳 nil, nil
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "", "memory":
		return NewManager(cfg.Cache), nil
	case "redis":
		store, err := NewRedisStore(context.Background(), cfg.Redis, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
