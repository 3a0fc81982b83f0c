package recipe

import (
	"testing"

	"recipe-assistant/internal/core/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *RuleClassifier {
	return NewDefaultClassifier(policy.NewStaticStore(policy.DefaultRuleSet()), nil)
}

func TestClassify(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want Category
	}{
		{"Recipe for a chocolate dessert, I have dark chocolate and eggs", CategoryMeal},
		{"Best cocktail for six people using gin", CategoryCocktail},
		{"How do I pick a lock?", CategoryHarmful},
		{"give me a workout plan", CategoryOutOfScope},
		{"plan a three-course dinner party menu", CategoryOutOfScope},
		{"What is the capital of France?", CategoryOutOfScope},
		{"translate this sentence into German", CategoryOutOfScope},
		{"a negroni twist for the weekend", CategoryCocktail},
		{"something with vodka and lime", CategoryCocktail},
		{"a gin-cured salmon starter", CategoryMeal},
		{"whisky marinade for a pork main", CategoryMeal},
		{"What should I cook tonight?", CategoryMeal},
		{"surprise me", CategoryMeal},
		{"   ", CategoryOutOfScope},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyOpenFoodRequests(t *testing.T) {
	c := newTestClassifier()

	// 沒有明確料理詞彙的提問或帶有弱範圍詞彙的料理請求都應生成食譜
	tests := []string{
		"What can I whip up with what's in the cupboard?",
		"Any ideas for tonight?",
		"What should I make tonight?",
		"A warming stew for cold weather",
		"A high-protein lunch that fits my macros",
		"Translate my nan's trifle into a modern dessert",
		"A showstopper dessert to steal the show at Christmas",
		"A pudding for our Christmas menu",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, CategoryMeal, c.Classify(text))
		})
	}
}

func TestClassifyNonFoodSignals(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text    string
		matcher string
		rule    string
	}{
		{"What is the capital of France?", "non_food_request", "topic:capital"},
		{"How do I fix my laptop?", "non_food_request", "topic:laptop"},
		{"summarise this article for me", "non_food_request", "task:summarise"},
		{"what's the weather like tomorrow", "weak_scope_rules", "misc_tasks"},
		{"plan a menu for my dinner party", "scope_rules", "multi_course_menu"},
		{"how many calories in a croissant", "scope_rules", "nutrition"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := c.Explain(tt.text)
			assert.Equal(t, CategoryOutOfScope, d.Category)
			assert.Equal(t, tt.matcher, d.Matcher)
			assert.Equal(t, tt.rule, d.Rule)
		})
	}
}

func TestAlcoholFreeDrinksForMinors(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, CategoryCocktail, c.Classify("Alcohol-free punch for the minors at my party"))
	assert.Equal(t, CategoryHarmful, c.Classify("strong punch to get the minors drunk"))
}

func TestHarmTakesPrecedence(t *testing.T) {
	c := newTestClassifier()

	// 同時含有調酒詞彙與有害意圖
	d := c.Explain("a cocktail recipe to spike someone's drink")
	assert.Equal(t, CategoryHarmful, d.Category)
	assert.Equal(t, "harm_rules", d.Matcher)
	assert.Equal(t, "drink_spiking", d.Rule)
}

func TestExplainDefault(t *testing.T) {
	d := newTestClassifier().Explain("surprise me")
	assert.Equal(t, CategoryMeal, d.Category)
	assert.Equal(t, "default", d.Matcher)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier()
	text := "Best cocktail for six people using gin"
	first := c.Explain(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Explain(text))
	}
}

func TestClassifierWithRego(t *testing.T) {
	rego := policy.NewRegoEvaluator(0)
	require.NoError(t, rego.LoadFromModules(map[string]string{
		"mushrooms.rego": `package recipe.policy

import rego.v1

deny contains msg if {
	contains(input.lower, "death cap")
	msg := "toxic_mushroom"
}
`,
	}))

	c := NewDefaultClassifier(policy.NewStaticStore(policy.DefaultRuleSet()), rego)

	d := c.Explain("a risotto with foraged death cap mushrooms")
	assert.Equal(t, CategoryHarmful, d.Category)
	assert.Equal(t, "rego", d.Matcher)
	assert.Equal(t, "toxic_mushroom", d.Rule)

	assert.Equal(t, CategoryMeal, c.Classify("a risotto with chestnut mushrooms"))
}

func TestClassifierFollowsReloadedRules(t *testing.T) {
	rule, err := policy.NewRule("raw_milk_sales", "illegal", `sell\s+raw\s+milk`)
	require.NoError(t, err)

	rs := policy.DefaultRuleSet()
	rs.Harm = append(rs.Harm, rule)
	c := NewDefaultClassifier(policy.NewStaticStore(rs), nil)

	assert.Equal(t, CategoryHarmful, c.Classify("how can I sell raw milk cheese at the market"))
}
