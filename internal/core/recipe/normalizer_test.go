package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(2, 24)

	tests := []struct {
		name       string
		text       string
		category   Category
		hints      []string
		servings   int
		exclusions []string
	}{
		{
			name:       "hints in order",
			text:       "Recipe for a chocolate dessert, I have dark chocolate and eggs",
			category:   CategoryMeal,
			hints:      []string{"dark chocolate", "eggs"},
			servings:   2,
			exclusions: []string{},
		},
		{
			name:       "cocktail servings from people",
			text:       "Best cocktail for six people using gin",
			category:   CategoryCocktail,
			hints:      []string{"gin"},
			servings:   6,
			exclusions: []string{},
		},
		{
			name:       "for four",
			text:       "A pasta main for four with mushrooms, spinach and garlic",
			category:   CategoryMeal,
			hints:      []string{"mushrooms", "spinach", "garlic"},
			servings:   4,
			exclusions: []string{},
		},
		{
			name:       "serves and exclusions",
			text:       "Something that serves 8. I don't have any butter, and no onions please",
			category:   CategoryMeal,
			hints:      []string{},
			servings:   8,
			exclusions: []string{"butter", "onions"},
		},
		{
			name:       "free-from",
			text:       "a gluten-free dessert for a couple",
			category:   CategoryMeal,
			hints:      []string{},
			servings:   2,
			exclusions: []string{"gluten"},
		},
		{
			name:       "cooking time is not servings",
			text:       "a stew I can leave for 90 minutes",
			category:   CategoryMeal,
			hints:      []string{},
			servings:   2,
			exclusions: []string{},
		},
		{
			name:       "hint that is also excluded",
			text:       "I've got chicken and rice but I'm allergic to rice",
			category:   CategoryMeal,
			hints:      []string{"chicken"},
			servings:   2,
			exclusions: []string{"rice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := n.Normalize(tt.text, tt.category)
			assert.Equal(t, tt.text, req.RawText)
			assert.Equal(t, tt.category, req.Category)
			assert.Equal(t, tt.hints, req.IngredientHints)
			assert.Equal(t, tt.servings, req.Servings)
			assert.Equal(t, tt.exclusions, req.Exclusions)
		})
	}
}

func TestNormalizeOverflow(t *testing.T) {
	n := NewNormalizer(2, 24)

	req := n.Normalize("I have lamb, mint, peas, potatoes, garlic, lemon and feta", CategoryMeal)
	assert.Equal(t, []string{"lamb", "mint", "peas", "potatoes", "garlic"}, req.IngredientHints)
	assert.Equal(t, []string{"lemon", "feta"}, req.Overflow)
	assert.LessOrEqual(t, len(req.IngredientHints), MaxIngredientHints)
}

func TestNormalizeServingsBounds(t *testing.T) {
	n := NewNormalizer(2, 24)

	assert.Equal(t, 24, n.Normalize("a curry for 200 people", CategoryMeal).Servings)
	assert.Equal(t, 2, n.Normalize("a curry for 0 people", CategoryMeal).Servings)
	assert.Equal(t, 12, n.Normalize("brownies for a dozen guests", CategoryMeal).Servings)
	assert.Equal(t, 3, NewNormalizer(3, 0).Normalize("a soup", CategoryMeal).Servings)
}

func TestRequestCacheKey(t *testing.T) {
	n := NewNormalizer(2, 24)

	a := n.Normalize("I have eggs and cheese, for two", CategoryMeal)
	b := n.Normalize("i have EGGS and cheese for two!", CategoryMeal)
	c := n.Normalize("I have eggs and cheese, for four", CategoryMeal)

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())

	// 沒有食材與排除條件時，不同菜色仍須分開
	stew := n.Normalize("a hearty beef stew for dinner", CategoryMeal)
	pots := n.Normalize("a chocolate dessert please", CategoryMeal)
	assert.Equal(t, stew.Servings, pots.Servings)
	assert.NotEqual(t, stew.CacheKey(), pots.CacheKey())
}
