package recipe

import (
	"fmt"
	"strings"

	"recipe-assistant/internal/core/ai/provider"
)

const personaPrompt = `You are a warm, confident British chef who suggests exactly one starter, main, dessert or cocktail per request.
Rules:
1. Return exactly ONE recipe. Never offer alternatives or a menu.
2. Use British English spelling and vocabulary (colour, flavour, courgette, aubergine, coriander, double cream, plain flour, grill).
3. Use metric measurements only (g, kg, ml, l, °C, tsp, tbsp, cm). Never use cups, ounces, pounds, pints, inches or Fahrenheit.
4. Base ingredients must be everyday supermarket staples. No specialist or exotic items in the base list.
5. Add %d to %d elite ingredients: optional, premium finishing touches that are NOT in the base list.
6. Every ingredient needs a measurement.
7. The method is an ordered list of clear instructions.
8. If the user lacks an ingredient, substitute creatively. Never ask a follow-up question.
Reply with JSON only, no prose, in this shape:
{"recipes":[{"title":"...","ingredients":[{"name":"...","measurement":"..."}],"method":["...","..."],"elite_ingredients":[{"name":"...","measurement":"...","optional":true}]}]}`

// BuildMessages 組合人設、請求內容與（重試時的）違規回饋
func BuildMessages(spec GenerationSpec, feedback []Violation) []provider.Message {
	messages := []provider.Message{
		{Role: "system", Content: fmt.Sprintf(personaPrompt, spec.Style.EliteMin, spec.Style.EliteMax)},
		{Role: "user", Content: buildUserPrompt(spec)},
	}
	if len(feedback) > 0 {
		messages = append(messages, provider.Message{Role: "user", Content: buildFeedbackPrompt(feedback)})
	}
	return messages
}

func buildUserPrompt(spec GenerationSpec) string {
	req := spec.Request

	var b strings.Builder
	kind := "a starter, main or dessert"
	if req.Category == CategoryCocktail {
		kind = "a cocktail"
	}
	fmt.Fprintf(&b, "Create %s for %d.\n", kind, req.Servings)
	if len(req.IngredientHints) > 0 {
		fmt.Fprintf(&b, "Build it around: %s.\n", strings.Join(req.IngredientHints, ", "))
	}
	if len(req.Overflow) > 0 {
		fmt.Fprintf(&b, "They also mentioned: %s.\n", strings.Join(req.Overflow, ", "))
	}
	if len(req.Exclusions) > 0 {
		fmt.Fprintf(&b, "Do not use: %s. Substitute where needed.\n", strings.Join(req.Exclusions, ", "))
	}
	fmt.Fprintf(&b, "Units: %s. Spelling: %s.\n", spec.Style.Units, spec.Style.Spelling)
	fmt.Fprintf(&b, "Request: %q", strings.TrimSpace(req.RawText))
	return b.String()
}

func buildFeedbackPrompt(feedback []Violation) string {
	var b strings.Builder
	b.WriteString("Your previous recipe broke these rules. Return one corrected recipe in the same JSON shape:\n")
	for _, v := range feedback {
		fmt.Fprintf(&b, "- %s: %s\n", v.Code, v.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}
