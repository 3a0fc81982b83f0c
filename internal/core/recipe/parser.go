package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"recipe-assistant/internal/pkg/common"
)

// 生成器以 JSON 回傳時的格式
type wireRecipe struct {
	Title       string `json:"title"`
	Ingredients []struct {
		Name        string `json:"name"`
		Measurement string `json:"measurement"`
	} `json:"ingredients"`
	Method           []string `json:"method"`
	EliteIngredients []struct {
		Name        string `json:"name"`
		Measurement string `json:"measurement"`
		Optional    *bool  `json:"optional"`
	} `json:"elite_ingredients"`
}

type wireEnvelope struct {
	Recipes []wireRecipe `json:"recipes"`
	wireRecipe
}

var (
	numberedStepRe  = regexp.MustCompile(`^\s*(\d+)\s*[.)]\s*(.+)$`)
	bulletRe        = regexp.MustCompile(`^\s*(?:[-*•]|\d+\s*[.)])\s*(.+)$`)
	optionalTagRe   = regexp.MustCompile(`(?i)\s*\(optional\)\s*`)
	leadingNumberRe = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)
)

// ParseCandidate 將生成器原始輸出解析為候選食譜，一律回傳非 nil；
// 無法辨識的部分留空，交由 Validator 判定
func ParseCandidate(raw string) *CandidateRecipe {
	if c, ok := parseJSONCandidate(raw); ok {
		return c
	}
	return parseMarkdownCandidate(raw)
}

func parseJSONCandidate(raw string) (*CandidateRecipe, bool) {
	obj, ok := common.ExtractJSONObject(raw)
	if !ok {
		return nil, false
	}

	var env wireEnvelope
	if err := common.ParseJSON(obj, &env); err != nil {
		if err := common.ParseJSON(common.QuoteJSONKeys(obj), &env); err != nil {
			return nil, false
		}
	}

	recipes := env.Recipes
	if len(recipes) == 0 {
		if env.Title == "" && len(env.Ingredients) == 0 && len(env.Method) == 0 {
			return nil, false
		}
		recipes = []wireRecipe{env.wireRecipe}
	}

	w := recipes[0]
	c := &CandidateRecipe{
		Title:       strings.TrimSpace(w.Title),
		RecipeCount: len(recipes),
		Raw:         raw,
	}
	for _, in := range w.Ingredients {
		name, optional := stripOptional(in.Name)
		if optional {
			c.EliteIngredients = append(c.EliteIngredients, EliteIngredient{
				Name: name, Measurement: strings.TrimSpace(in.Measurement), Optional: true,
			})
			continue
		}
		c.Ingredients = append(c.Ingredients, Ingredient{
			Name: name, Measurement: strings.TrimSpace(in.Measurement),
		})
	}
	for _, in := range w.EliteIngredients {
		name, tagged := stripOptional(in.Name)
		optional := tagged
		if in.Optional != nil {
			optional = *in.Optional || tagged
		}
		c.EliteIngredients = append(c.EliteIngredients, EliteIngredient{
			Name: name, Measurement: strings.TrimSpace(in.Measurement), Optional: optional,
		})
	}
	for i, text := range w.Method {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		// JSON 陣列本身即有順序，可能已帶編號
		text = leadingNumberRe.ReplaceAllString(text, "")
		c.Method = append(c.Method, Step{Number: i + 1, Text: text})
	}
	return c, true
}

type mdSection int

const (
	sectionNone mdSection = iota
	sectionIngredients
	sectionElite
	sectionMethod
)

func parseMarkdownCandidate(raw string) *CandidateRecipe {
	c := &CandidateRecipe{Raw: raw}
	section := sectionNone
	eliteSectionOptional := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "## ") || trimmed == "##":
			c.RecipeCount++
			if c.RecipeCount == 1 {
				c.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "##"))
			}
			section = sectionNone
			continue
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.ToLower(strings.TrimLeft(trimmed, "# "))
			switch {
			case strings.Contains(heading, "elite") || strings.Contains(heading, "optional") || strings.Contains(heading, "finishing"):
				section = sectionElite
				eliteSectionOptional = strings.Contains(heading, "optional")
			case strings.Contains(heading, "ingredient"):
				section = sectionIngredients
			case strings.Contains(heading, "method") || strings.Contains(heading, "instruction") || strings.Contains(heading, "steps"):
				section = sectionMethod
			default:
				section = sectionNone
			}
			continue
		}

		// 只解析第一份食譜的內容
		if c.RecipeCount > 1 {
			continue
		}

		switch section {
		case sectionIngredients, sectionElite:
			m := bulletRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name, measurement := splitIngredientLine(m[1])
			name, tagged := stripOptional(name)
			if section == sectionElite || tagged {
				c.EliteIngredients = append(c.EliteIngredients, EliteIngredient{
					Name:        name,
					Measurement: measurement,
					Optional:    tagged || eliteSectionOptional,
				})
				continue
			}
			c.Ingredients = append(c.Ingredients, Ingredient{Name: name, Measurement: measurement})
		case sectionMethod:
			if m := numberedStepRe.FindStringSubmatch(line); m != nil {
				n, _ := strconv.Atoi(m[1])
				c.Method = append(c.Method, Step{Number: n, Text: strings.TrimSpace(m[2])})
				continue
			}
			text := strings.TrimSpace(strings.TrimLeft(trimmed, "-*• "))
			c.Method = append(c.Method, Step{Number: 0, Text: text})
		}
	}
	return c
}

// splitIngredientLine 以第一個逗號分隔「名稱,分量」
func splitIngredientLine(s string) (string, string) {
	name, measurement, found := strings.Cut(s, ",")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(name), strings.TrimSpace(measurement)
}

// stripOptional 移除名稱中的 (optional) 標記
func stripOptional(name string) (string, bool) {
	if !optionalTagRe.MatchString(name) {
		return strings.TrimSpace(name), false
	}
	return strings.TrimSpace(optionalTagRe.ReplaceAllString(name, " ")), true
}
