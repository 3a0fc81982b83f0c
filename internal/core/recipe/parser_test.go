package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdown(t *testing.T) {
	c := ParseCandidate(validMarkdown)

	assert.Equal(t, 1, c.RecipeCount)
	assert.Equal(t, "Dark Chocolate Pots", c.Title)
	require.Len(t, c.Ingredients, 4)
	assert.Equal(t, Ingredient{Name: "dark chocolate", Measurement: "200g"}, c.Ingredients[0])
	require.Len(t, c.EliteIngredients, 1)
	assert.Equal(t, EliteIngredient{Name: "fleur de sel", Measurement: "a pinch", Optional: true}, c.EliteIngredients[0])
	require.Len(t, c.Method, 3)
	assert.Equal(t, Step{Number: 2, Text: "Whisk the eggs and sugar until pale."}, c.Method[1])
	assert.Equal(t, validMarkdown, c.Raw)
}

func TestParseMarkdownCountsRecipes(t *testing.T) {
	c := ParseCandidate(twoRecipesMarkdown)

	assert.Equal(t, 2, c.RecipeCount)
	assert.Equal(t, "Negroni", c.Title)
	// 第二份食譜的內容不併入
	assert.Len(t, c.Ingredients, 2)
	assert.Len(t, c.Method, 1)
}

func TestParseMarkdownEliteSection(t *testing.T) {
	raw := "## Lamb Chops\n### Ingredients\n- lamb chops,4\n- rosemary,2 sprigs\n### Optional elite ingredients\n- smoked sea salt,a pinch\n### Method\n1. Grill the chops.\n- Rest for 5 minutes.\n"
	c := ParseCandidate(raw)

	require.Len(t, c.EliteIngredients, 1)
	assert.True(t, c.EliteIngredients[0].Optional)
	require.Len(t, c.Method, 2)
	assert.Equal(t, 0, c.Method[1].Number)
}

func TestParseJSON(t *testing.T) {
	c := ParseCandidate(validJSON)

	assert.Equal(t, 1, c.RecipeCount)
	assert.Equal(t, "Gin Fizz", c.Title)
	assert.Len(t, c.Ingredients, 4)
	require.Len(t, c.Method, 2)
	assert.Equal(t, Step{Number: 1, Text: "Shake the gin, lemon and syrup hard with ice."}, c.Method[0])
	assert.Equal(t, 2, c.Method[1].Number)
	require.Len(t, c.EliteIngredients, 1)
	assert.True(t, c.EliteIngredients[0].Optional)
}

func TestParseJSONSingleObject(t *testing.T) {
	raw := `{"title":"Tomato Soup","ingredients":[{"name":"tomatoes","measurement":"800g"},{"name":"basil (optional)","measurement":"a handful"}],"method":["Simmer."]}`
	c := ParseCandidate(raw)

	assert.Equal(t, 1, c.RecipeCount)
	assert.Len(t, c.Ingredients, 1)
	require.Len(t, c.EliteIngredients, 1)
	assert.Equal(t, "basil", c.EliteIngredients[0].Name)
}

func TestParseJSONMultipleRecipes(t *testing.T) {
	raw := `{"recipes":[{"title":"A","method":["x"]},{"title":"B","method":["y"]}]}`
	assert.Equal(t, 2, ParseCandidate(raw).RecipeCount)
}

func TestParseGarbage(t *testing.T) {
	c := ParseCandidate("I'm sorry, I can only help with cooking.")
	require.NotNil(t, c)
	assert.Equal(t, 0, c.RecipeCount)
	assert.Empty(t, c.Ingredients)
}
