package policy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"recipe-assistant/internal/pkg/common"

	"github.com/open-policy-agent/opa/rego"
	"go.uber.org/zap"
)

// regoQuery 政策需定義 data.recipe.policy.deny 字串集合
const regoQuery = "data.recipe.policy.deny"

// RegoInput is the data sent to OPA for evaluation.
type RegoInput struct {
	Text  string `json:"text"`
	Lower string `json:"lower"`
}

// RegoEvaluator 以 Rego 政策補充有害意圖判斷，便於稽核與非工程人員維護
type RegoEvaluator struct {
	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
	timeout  time.Duration
}

// NewRegoEvaluator creates a policy evaluator. Call Load() to compile policies.
// A timeout <= 0 evaluates without a deadline, so the same text always gets the same verdict.
func NewRegoEvaluator(timeout time.Duration) *RegoEvaluator {
	if timeout < 0 {
		timeout = 0
	}
	return &RegoEvaluator{timeout: timeout}
}

// Load compiles Rego modules from the given directory.
func (e *RegoEvaluator) Load(dir string) error {
	modules, err := LoadRegoFiles(dir)
	if err != nil {
		return fmt.Errorf("load rego files: %w", err)
	}
	if len(modules) == 0 {
		common.LogWarn("no rego files found", zap.String("path", dir))
		return nil
	}
	if err := e.LoadFromModules(modules); err != nil {
		return err
	}
	common.LogInfo("opa policies loaded", zap.Int("modules", len(modules)))
	return nil
}

// LoadFromModules compiles policies from provided module sources.
func (e *RegoEvaluator) LoadFromModules(modules map[string]string) error {
	opts := []func(*rego.Rego){rego.Query(regoQuery)}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("prepare rego: %w", err)
	}

	e.mu.Lock()
	e.prepared = &prepared
	e.mu.Unlock()
	return nil
}

// Loaded 是否已有可用政策
func (e *RegoEvaluator) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prepared != nil
}

// Deny 回傳政策拒絕理由（已排序）；空切片代表允許
func (e *RegoEvaluator) Deny(ctx context.Context, text string) ([]string, error) {
	e.mu.RLock()
	prepared := e.prepared
	e.mu.RUnlock()

	if prepared == nil {
		return nil, nil
	}

	evalCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	input := RegoInput{Text: text, Lower: strings.ToLower(text)}
	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("policy evaluation: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil, nil
	}

	raw, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected policy result format %T", results[0].Expressions[0].Value)
	}

	reasons := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			reasons = append(reasons, s)
		}
	}
	sort.Strings(reasons)
	return reasons, nil
}
