package recipe

import (
	"context"
	"errors"
	"time"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/pkg/common"
	"recipe-assistant/internal/telemetry"

	"go.uber.org/zap"
)

// DefaultMaxRetries 首次生成失敗後的最大重試次數
const DefaultMaxRetries = 3

// Options 管線可選設定
type Options struct {
	MaxRetries int
	Cache      cache.Store
	Metrics    *telemetry.Metrics
}

// Service 食譜管線：分類 → 正規化 → 生成 → 驗證（重試）→ 輸出
type Service struct {
	classifier Classifier
	normalizer *Normalizer
	generator  Generator
	validator  *Validator
	emitter    *Emitter
	cache      cache.Store
	metrics    *telemetry.Metrics
	maxRetries int
}

// NewService 創建食譜管線
func NewService(classifier Classifier, normalizer *Normalizer, generator Generator, validator *Validator, emitter *Emitter, opts Options) *Service {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	return &Service{
		classifier: classifier,
		normalizer: normalizer,
		generator:  generator,
		validator:  validator,
		emitter:    emitter,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		maxRetries: opts.MaxRetries,
	}
}

// Prepare 僅分類並正規化，不呼叫生成器
func (s *Service) Prepare(rawText string) (Request, Decision) {
	decision := s.explain(rawText)
	if !decision.Category.Accepted() {
		return Request{RawText: rawText, Category: decision.Category}, decision
	}
	return s.normalizer.Normalize(rawText, decision.Category), decision
}

// Validate 驗證一份候選食譜
func (s *Service) Validate(c *CandidateRecipe) ValidationResult {
	return s.validator.Validate(c)
}

// Handle 處理一個請求，任何路徑都回傳完整的 FinalResponse
func (s *Service) Handle(ctx context.Context, rawText string) FinalResponse {
	start := time.Now()

	decision := s.explain(rawText)
	s.metrics.IncClassification(string(decision.Category), decision.Matcher)

	if !decision.Category.Accepted() {
		common.LogInfo("請求已拒絕",
			zap.String("category", string(decision.Category)),
			zap.String("matcher", decision.Matcher),
			zap.String("rule", decision.Rule),
		)
		resp := s.emitter.Emit(decision.Category, nil)
		s.finish(resp, start)
		return resp
	}

	req := s.normalizer.Normalize(rawText, decision.Category)
	common.LogInfo("請求已分類",
		zap.String("category", string(req.Category)),
		zap.String("matcher", decision.Matcher),
		zap.Int("hints", len(req.IngredientHints)),
		zap.Int("servings", req.Servings),
		zap.Int("exclusions", len(req.Exclusions)),
	)

	key := req.CacheKey()
	if resp, ok := s.fromCache(ctx, key); ok {
		s.finish(resp, start)
		return resp
	}

	outcome := s.generate(ctx, NewGenerationSpec(req))
	resp := s.emitter.Emit(req.Category, outcome)

	if resp.Status == StatusRecipe {
		s.toCache(ctx, key, resp)
	}
	if resp.InternalNote != "" {
		common.LogWarn("食譜未完全符合要求", zap.String("note", resp.InternalNote))
	}
	s.finish(resp, start)
	return resp
}

// Ask 以 (回應, error) 形式包裝 Handle；管線本身不回傳錯誤
func (s *Service) Ask(ctx context.Context, rawText string) (FinalResponse, error) {
	return s.Handle(ctx, rawText), nil
}

// generate 依序重試，直到通過驗證或次數用盡；保留違規最少的候選
func (s *Service) generate(ctx context.Context, spec GenerationSpec) *Outcome {
	outcome := &Outcome{}
	var feedback []Violation

	for attempt := 1; attempt <= s.maxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			common.LogWarn("請求已取消，停止重試", zap.Error(err), zap.Int("attempt", attempt))
			break
		}
		outcome.Attempts = attempt

		candidate, err := s.generator.Generate(ctx, spec, feedback)
		if err != nil {
			s.metrics.IncGeneratorError()
			common.LogError("生成器呼叫失敗", zap.Error(err), zap.Int("attempt", attempt))
			continue
		}

		result := s.validator.Validate(candidate)
		for _, v := range result.Violations {
			s.metrics.IncViolation(string(v.Code))
		}

		if outcome.Candidate == nil || len(result.Violations) < len(outcome.Validation.Violations) {
			outcome.Candidate = candidate
			outcome.Validation = result
		}
		if result.Passed {
			return outcome
		}

		common.LogInfo("候選食譜未通過驗證",
			zap.Int("attempt", attempt),
			zap.Strings("violations", result.Codes()),
		)
		feedback = result.Violations
	}

	outcome.Exhausted = true
	return outcome
}

func (s *Service) explain(rawText string) Decision {
	if e, ok := s.classifier.(interface{ Explain(string) Decision }); ok {
		return e.Explain(rawText)
	}
	return Decision{Category: s.classifier.Classify(rawText)}
}

func (s *Service) fromCache(ctx context.Context, key string) (FinalResponse, bool) {
	if s.cache == nil {
		return FinalResponse{}, false
	}
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		s.metrics.IncCacheLookup(false)
		return FinalResponse{}, false
	}

	var resp FinalResponse
	if err := common.ParseJSON(val, &resp); err != nil {
		common.LogWarn("快取內容無法解析", zap.Error(err))
		s.metrics.IncCacheLookup(false)
		return FinalResponse{}, false
	}
	s.metrics.IncCacheLookup(true)
	resp.Cached = true
	return resp, true
}

func (s *Service) toCache(ctx context.Context, key string, resp FinalResponse) {
	if s.cache == nil {
		return
	}
	val, err := common.ToJSON(resp)
	if err != nil {
		common.LogWarn("序列化快取內容失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, val); err != nil {
		common.LogWarn("寫入快取失敗", zap.Error(err))
	}
}

func (s *Service) finish(resp FinalResponse, start time.Time) {
	elapsed := time.Since(start)
	s.metrics.ObserveRequest(string(resp.Category), string(resp.Status), resp.Attempts, elapsed)
	common.LogInfo("食譜管線完成",
		zap.String("category", string(resp.Category)),
		zap.String("status", string(resp.Status)),
		zap.Int("attempts", resp.Attempts),
		zap.Bool("cached", resp.Cached),
		zap.Duration("duration", elapsed),
	)
}
