package recipe

import (
	"fmt"
	"strings"
)

// 固定的拒絕與無法服務訊息
const (
	HarmfulRefusal = "Sorry, I can't help with that. I'm here for starters, mains, desserts and cocktails, " +
		"so tell me what you fancy and I'll put a recipe together."
	OutOfScopeRefusal = "That's outside what I do. I can suggest a single starter, main, dessert or cocktail, " +
		"so tell me what you fancy or what's in your cupboard."
	UnavailableMessage = "The kitchen is having a moment and I couldn't put a recipe together just now. " +
		"Please try again shortly."
)

// Outcome 管線交給 Emitter 的生成結果
type Outcome struct {
	Candidate  *CandidateRecipe
	Validation ValidationResult
	Attempts   int
	Exhausted  bool
}

// Emitter 產生最終回應
type Emitter struct{}

// NewEmitter 建立 Emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit 依分類與生成結果產生回應；拒絕時 outcome 可為 nil
func (e *Emitter) Emit(category Category, outcome *Outcome) FinalResponse {
	switch category {
	case CategoryHarmful:
		return FinalResponse{Status: StatusRefused, Category: category, Text: HarmfulRefusal}
	case CategoryOutOfScope:
		return FinalResponse{Status: StatusRefused, Category: category, Text: OutOfScopeRefusal}
	}

	if outcome == nil || outcome.Candidate == nil {
		attempts := 0
		if outcome != nil {
			attempts = outcome.Attempts
		}
		return FinalResponse{
			Status:       StatusUnavailable,
			Category:     category,
			Text:         UnavailableMessage,
			Attempts:     attempts,
			InternalNote: fmt.Sprintf("generator produced no candidate in %d attempts", attempts),
		}
	}

	resp := FinalResponse{
		Status:   StatusRecipe,
		Category: category,
		Text:     RenderMarkdown(outcome.Candidate),
		Recipe:   outcome.Candidate,
		Attempts: outcome.Attempts,
	}
	if !outcome.Validation.Passed {
		resp.Status = StatusBestEffort
		resp.Notes = outcome.Validation.Codes()
		resp.InternalNote = fmt.Sprintf("best effort after %d attempts, unmet: %s",
			outcome.Attempts, strings.Join(resp.Notes, ", "))
	}
	return resp
}

// RenderMarkdown 以固定格式輸出食譜；步驟一律依序重新編號
func RenderMarkdown(c *CandidateRecipe) string {
	var b strings.Builder

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "Chef's Suggestion"
	}
	fmt.Fprintf(&b, "## %s\n", title)

	b.WriteString("### Ingredients list\n")
	for _, in := range c.Ingredients {
		fmt.Fprintf(&b, "    - %s,%s\n", strings.TrimSpace(in.Name), strings.TrimSpace(in.Measurement))
	}
	for _, el := range c.EliteIngredients {
		fmt.Fprintf(&b, "    - %s (optional),%s\n", strings.TrimSpace(el.Name), strings.TrimSpace(el.Measurement))
	}

	b.WriteString("### Method\n")
	n := 0
	for _, s := range c.Method {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, text)
	}
	return b.String()
}
