package recipe

import (
	"strconv"
	"strings"

	"recipe-assistant/internal/pkg/common"
)

// Category 請求分類
type Category string

const (
	CategoryMeal       Category = "MEAL"
	CategoryCocktail   Category = "COCKTAIL"
	CategoryOutOfScope Category = "OUT_OF_SCOPE"
	CategoryHarmful    Category = "HARMFUL"
)

// Accepted 是否為可生成食譜的分類
func (c Category) Accepted() bool {
	return c == CategoryMeal || c == CategoryCocktail
}

// Request 經分類與正規化後的使用者請求
type Request struct {
	RawText         string   `json:"-"`
	Category        Category `json:"category"`
	IngredientHints []string `json:"ingredient_hints"`
	Overflow        []string `json:"overflow,omitempty"`
	Servings        int      `json:"servings"`
	Exclusions      []string `json:"exclusions"`
}

// HasExclusion 判斷食材是否在排除清單中
func (r Request) HasExclusion(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.Exclusions {
		if e == name {
			return true
		}
	}
	return false
}

// CacheKey 以正規化後的原文與解析出的限制產生快取鍵；只差大小寫或標點的請求共用同一鍵
func (r Request) CacheKey() string {
	return common.HashParts(
		string(r.Category),
		normalizeText(r.RawText),
		strings.Join(r.IngredientHints, ","),
		strconv.Itoa(r.Servings),
		strings.Join(r.Exclusions, ","),
	)
}

// StyleRules 人設固定的輸出風格
type StyleRules struct {
	Units    string `json:"units"`
	Spelling string `json:"spelling"`
	EliteMin int    `json:"elite_min"`
	EliteMax int    `json:"elite_max"`
}

// DefaultStyleRules 唯一使用的風格設定
var DefaultStyleRules = StyleRules{
	Units:    "metric",
	Spelling: "British",
	EliteMin: 1,
	EliteMax: 2,
}

// GenerationSpec 交給生成器的結構化請求，建立後唯讀
type GenerationSpec struct {
	Request Request    `json:"request"`
	Style   StyleRules `json:"style"`
}

// NewGenerationSpec 為已接受的請求建立 GenerationSpec
func NewGenerationSpec(req Request) GenerationSpec {
	req.IngredientHints = append([]string(nil), req.IngredientHints...)
	req.Exclusions = append([]string(nil), req.Exclusions...)
	req.Overflow = append([]string(nil), req.Overflow...)
	return GenerationSpec{Request: req, Style: DefaultStyleRules}
}

// Ingredient 基本食材
type Ingredient struct {
	Name        string `json:"name"`
	Measurement string `json:"measurement"`
}

// EliteIngredient 可選的精選加料
type EliteIngredient struct {
	Name        string `json:"name"`
	Measurement string `json:"measurement"`
	Optional    bool   `json:"optional"`
}

// Step 做法步驟；Number 為 0 表示原文未編號
type Step struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// CandidateRecipe 生成器產出的候選食譜，只能整份重新生成
type CandidateRecipe struct {
	Title            string            `json:"title"`
	Ingredients      []Ingredient      `json:"ingredients"`
	Method           []Step            `json:"method"`
	EliteIngredients []EliteIngredient `json:"elite_ingredients"`
	RecipeCount      int               `json:"recipe_count"`
	Raw              string            `json:"-"`
}

// ViolationCode 合約違規代碼
type ViolationCode string

const (
	ViolationRecipeCount         ViolationCode = "RECIPE_COUNT"
	ViolationTitleMissing        ViolationCode = "TITLE_MISSING"
	ViolationIngredientsEmpty    ViolationCode = "INGREDIENTS_EMPTY"
	ViolationIngredientMalformed ViolationCode = "INGREDIENT_MALFORMED"
	ViolationMeasurementMissing  ViolationCode = "MEASUREMENT_MISSING"
	ViolationImperialUnit        ViolationCode = "IMPERIAL_UNIT"
	ViolationAmericanSpelling    ViolationCode = "AMERICAN_SPELLING"
	ViolationMethodEmpty         ViolationCode = "METHOD_EMPTY"
	ViolationMethodNotNumbered   ViolationCode = "METHOD_NOT_NUMBERED"
	ViolationEliteCount          ViolationCode = "ELITE_COUNT"
	ViolationEliteNotOptional    ViolationCode = "ELITE_NOT_OPTIONAL"
	ViolationEliteDuplicatesBase ViolationCode = "ELITE_DUPLICATES_BASE"
	ViolationSpecialist          ViolationCode = "SPECIALIST_INGREDIENT"
)

// Violation 一項違規與說明
type Violation struct {
	Code   ViolationCode `json:"code"`
	Detail string        `json:"detail"`
}

// ValidationResult 單次驗證結果
type ValidationResult struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations"`
}

// Codes 依序列出違規代碼
func (r ValidationResult) Codes() []string {
	codes := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		codes[i] = string(v.Code)
	}
	return codes
}

// Status 最終回應狀態
type Status string

const (
	StatusRecipe      Status = "recipe"
	StatusBestEffort  Status = "best_effort"
	StatusRefused     Status = "refused"
	StatusUnavailable Status = "unavailable"
)

// FinalResponse 管線的最終輸出
type FinalResponse struct {
	Status       Status           `json:"status"`
	Category     Category         `json:"category"`
	Text         string           `json:"text"`
	Recipe       *CandidateRecipe `json:"recipe,omitempty"`
	Notes        []string         `json:"notes,omitempty"`
	Attempts     int              `json:"attempts"`
	Cached       bool             `json:"cached,omitempty"`
	InternalNote string           `json:"-"`
}
