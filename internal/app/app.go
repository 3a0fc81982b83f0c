package app

import (
	"context"
	"fmt"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/ai/openrouter"
	"recipe-assistant/internal/core/ai/queue"
	aiService "recipe-assistant/internal/core/ai/service"
	"recipe-assistant/internal/core/policy"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
	"recipe-assistant/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options 組裝時可替換的元件
type Options struct {
	// Registerer 指標註冊處；nil 時使用 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
	// Generator 非 nil 時取代 OpenRouter 生成器
	Generator recipe.Generator
}

// App 已組裝完成的食譜服務
type App struct {
	Config  *config.Config
	Policy  *policy.Store
	Rego    *policy.RegoEvaluator
	AI      *aiService.Service
	Cache   cache.Store
	Metrics *telemetry.Metrics
	Recipes *recipe.Service
	Queue   *queue.Manager

	cancel context.CancelFunc
}

// Build 依設定組裝所有元件並啟動隊列
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	ctx, cancel := context.WithCancel(ctx)
	a := &App{Config: cfg, cancel: cancel}

	a.Metrics = telemetry.NewMetrics(opts.Registerer)

	// 拒絕規則
	store, err := policy.NewStore(cfg.Policy.RulesPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load policy rules: %w", err)
	}
	store.OnReload(func(*policy.RuleSet) { a.Metrics.IncPolicyReload(true) })
	store.OnReloadError(func(error) { a.Metrics.IncPolicyReload(false) })
	if cfg.Policy.Watch && cfg.Policy.RulesPath != "" {
		if err := store.Watch(ctx); err != nil {
			common.LogWarn("無法監看規則檔，改用啟動時的規則", zap.Error(err))
		}
	}
	a.Policy = store

	if cfg.Policy.RegoPath != "" {
		a.Rego = policy.NewRegoEvaluator(cfg.Policy.Timeout)
		if err := a.Rego.Load(cfg.Policy.RegoPath); err != nil {
			cancel()
			return nil, fmt.Errorf("load rego policies: %w", err)
		}
	}

	// 生成器
	generator := opts.Generator
	if generator == nil {
		client := openrouter.NewClient(cfg.OpenRouter)
		a.AI = aiService.NewService(client, cfg.OpenRouter.MaxTokens, cfg.OpenRouter.Temperature)
		generator = recipe.NewLLMGenerator(a.AI)
	}

	// 快取
	a.Cache, err = cache.NewStore(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	a.Recipes = recipe.NewService(
		recipe.NewDefaultClassifier(store, a.Rego),
		recipe.NewNormalizer(cfg.Recipe.DefaultServings, cfg.Recipe.MaxServings),
		generator,
		recipe.NewValidator(store.Current),
		recipe.NewEmitter(),
		recipe.Options{
			MaxRetries: cfg.Recipe.MaxRetries,
			Cache:      a.Cache,
			Metrics:    a.Metrics,
		},
	)

	a.Queue = queue.NewManager(cfg.Queue)
	a.Queue.Start(func(ctx context.Context, payload string) (interface{}, error) {
		return a.Recipes.Handle(ctx, payload), nil
	})

	common.LogInfo("食譜服務已初始化",
		zap.Bool("cache_enabled", a.Cache != nil),
		zap.Bool("rego_enabled", a.Rego != nil && a.Rego.Loaded()),
		zap.Bool("policy_watch", cfg.Policy.Watch),
		zap.Int("max_retries", cfg.Recipe.MaxRetries),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.String("model", cfg.OpenRouter.Model),
	)
	return a, nil
}

// Ask 經由隊列處理一個請求
func (a *App) Ask(ctx context.Context, query string) (recipe.FinalResponse, error) {
	v, err := a.Queue.Submit(ctx, common.GenerateUUID(), query)
	if err != nil {
		return recipe.FinalResponse{}, err
	}
	resp, ok := v.(recipe.FinalResponse)
	if !ok {
		return recipe.FinalResponse{}, fmt.Errorf("unexpected queue result %T", v)
	}
	return resp, nil
}

// Close 依序停止隊列、規則監看並釋放外部連線
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			common.LogWarn("關閉快取失敗", zap.Error(err))
		}
	}
	if a.AI != nil {
		if err := a.AI.Close(); err != nil {
			common.LogWarn("關閉 AI 服務失敗", zap.Error(err))
		}
	}
}
