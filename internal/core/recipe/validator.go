package recipe

import (
	"fmt"
	"strings"

	"recipe-assistant/internal/core/policy"
)

// Validator 檢查候選食譜是否符合輸出合約
type Validator struct {
	rules func() *policy.RuleSet
	style StyleRules
}

// NewValidator 建立 Validator；rules 為 nil 時使用內建規則
func NewValidator(rules func() *policy.RuleSet) *Validator {
	if rules == nil {
		defaults := policy.DefaultRuleSet()
		rules = func() *policy.RuleSet { return defaults }
	}
	return &Validator{rules: rules, style: DefaultStyleRules}
}

// Validate 依固定順序檢查所有規則，每個代碼最多出現一次
func (v *Validator) Validate(c *CandidateRecipe) ValidationResult {
	var violations []Violation
	add := func(code ViolationCode, format string, args ...interface{}) {
		violations = append(violations, Violation{Code: code, Detail: fmt.Sprintf(format, args...)})
	}

	if c == nil {
		c = &CandidateRecipe{}
	}

	if c.RecipeCount != 1 {
		add(ViolationRecipeCount, "expected exactly one recipe, got %d", c.RecipeCount)
	}
	if strings.TrimSpace(c.Title) == "" {
		add(ViolationTitleMissing, "recipe has no title")
	}

	// 基本食材
	if len(c.Ingredients) == 0 {
		add(ViolationIngredientsEmpty, "ingredient list is empty")
	}
	var malformed, missing, imperial []string
	for i, in := range c.Ingredients {
		if strings.TrimSpace(in.Name) == "" {
			malformed = append(malformed, fmt.Sprintf("#%d", i+1))
			continue
		}
		if strings.TrimSpace(in.Measurement) == "" {
			missing = append(missing, in.Name)
			continue
		}
		for _, u := range findImperial(in.Measurement, true) {
			imperial = append(imperial, fmt.Sprintf("%s (%s)", in.Name, u))
		}
	}
	for _, e := range c.EliteIngredients {
		if strings.TrimSpace(e.Name) == "" {
			malformed = append(malformed, "elite")
			continue
		}
		if strings.TrimSpace(e.Measurement) == "" {
			missing = append(missing, e.Name)
			continue
		}
		for _, u := range findImperial(e.Measurement, true) {
			imperial = append(imperial, fmt.Sprintf("%s (%s)", e.Name, u))
		}
	}
	for _, s := range c.Method {
		imperial = append(imperial, findImperial(s.Text, false)...)
	}
	imperial = append(imperial, findImperial(c.Title, false)...)

	if len(malformed) > 0 {
		add(ViolationIngredientMalformed, "ingredients without a name: %s", strings.Join(malformed, ", "))
	}
	if len(missing) > 0 {
		add(ViolationMeasurementMissing, "no measurement for: %s", strings.Join(missing, ", "))
	}
	if len(imperial) > 0 {
		add(ViolationImperialUnit, "use metric instead of: %s", strings.Join(imperial, ", "))
	}

	if spellings := americanSpellings(c); len(spellings) > 0 {
		add(ViolationAmericanSpelling, "use British English: %s", strings.Join(spellings, ", "))
	}

	// 做法
	if len(c.Method) == 0 {
		add(ViolationMethodEmpty, "method has no steps")
	} else if !sequentiallyNumbered(c.Method) {
		add(ViolationMethodNotNumbered, "method steps must be numbered 1 to %d", len(c.Method))
	}

	// 精選加料
	base := make(map[string]bool, len(c.Ingredients))
	for _, in := range c.Ingredients {
		base[normalizeName(in.Name)] = true
	}
	distinct := make(map[string]bool, len(c.EliteIngredients))
	var notOptional, duplicated []string
	for _, e := range c.EliteIngredients {
		name := normalizeName(e.Name)
		if name == "" {
			continue
		}
		distinct[name] = true
		if !e.Optional {
			notOptional = append(notOptional, e.Name)
		}
		if base[name] {
			duplicated = append(duplicated, e.Name)
		}
	}
	if n := len(distinct); n < v.style.EliteMin || n > v.style.EliteMax {
		add(ViolationEliteCount, "expected %d to %d elite ingredients, got %d", v.style.EliteMin, v.style.EliteMax, n)
	}
	if len(notOptional) > 0 {
		add(ViolationEliteNotOptional, "elite ingredients must be optional: %s", strings.Join(notOptional, ", "))
	}
	if len(duplicated) > 0 {
		add(ViolationEliteDuplicatesBase, "elite ingredients repeat the base list: %s", strings.Join(duplicated, ", "))
	}

	// 超市常備食材；精選加料不受此限
	rules := v.rules()
	var specialist []string
	for _, in := range c.Ingredients {
		if item, ok := rules.IsSpecialist(in.Name); ok {
			specialist = append(specialist, fmt.Sprintf("%s (%s)", in.Name, item))
		}
	}
	if len(specialist) > 0 {
		add(ViolationSpecialist, "not a supermarket staple: %s", strings.Join(specialist, ", "))
	}

	return ValidationResult{Passed: len(violations) == 0, Violations: violations}
}

// americanSpellings 列出所有美式拼寫與建議的英式寫法（不重複）
func americanSpellings(c *CandidateRecipe) []string {
	texts := []string{c.Title}
	for _, in := range c.Ingredients {
		texts = append(texts, in.Name, in.Measurement)
	}
	for _, e := range c.EliteIngredients {
		texts = append(texts, e.Name, e.Measurement)
	}
	for _, s := range c.Method {
		texts = append(texts, s.Text)
	}

	seen := make(map[string]bool)
	var out []string
	for _, t := range texts {
		for _, w := range americanSpellingRe.FindAllString(t, -1) {
			key := strings.ToLower(w)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fmt.Sprintf("%s→%s", key, britishSpelling[key]))
		}
	}
	return out
}

func sequentiallyNumbered(steps []Step) bool {
	for i, s := range steps {
		if s.Number != i+1 || strings.TrimSpace(s.Text) == "" {
			return false
		}
	}
	return true
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
