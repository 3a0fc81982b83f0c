package recipe

import (
	"context"
	"fmt"

	"recipe-assistant/internal/core/ai/provider"
)

// Generator 外部生成器的邊界：每次呼叫回傳恰好一份候選食譜
type Generator interface {
	Generate(ctx context.Context, spec GenerationSpec, feedback []Violation) (*CandidateRecipe, error)
}

// Completer 文字補全服務
type Completer interface {
	Complete(ctx context.Context, messages []provider.Message) (string, error)
}

// LLMGenerator 透過 AI 補全服務產生候選食譜
type LLMGenerator struct {
	completer Completer
}

// NewLLMGenerator 建立 LLMGenerator
func NewLLMGenerator(completer Completer) *LLMGenerator {
	return &LLMGenerator{completer: completer}
}

// Generate 送出請求與回饋並解析回覆
func (g *LLMGenerator) Generate(ctx context.Context, spec GenerationSpec, feedback []Violation) (*CandidateRecipe, error) {
	content, err := g.completer.Complete(ctx, BuildMessages(spec, feedback))
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w", err)
	}
	return ParseCandidate(content), nil
}
