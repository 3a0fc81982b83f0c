package recipe

import (
	"context"
	"errors"
	"testing"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/policy"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator 依序回傳預先準備的輸出；用完後重複最後一筆
type scriptedGenerator struct {
	replies  []string
	errs     []error
	calls    int
	feedback [][]Violation
}

func (g *scriptedGenerator) Generate(ctx context.Context, spec GenerationSpec, feedback []Violation) (*CandidateRecipe, error) {
	i := g.calls
	g.calls++
	g.feedback = append(g.feedback, feedback)

	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if len(g.replies) == 0 {
		return nil, errors.New("no reply scripted")
	}
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return ParseCandidate(g.replies[i]), nil
}

func newTestService(gen Generator, opts Options) *Service {
	store := policy.NewStaticStore(policy.DefaultRuleSet())
	return NewService(
		NewDefaultClassifier(store, nil),
		NewNormalizer(DefaultServings, 12),
		gen,
		NewValidator(store.Current),
		NewEmitter(),
		opts,
	)
}

func TestHandleHarmfulSkipsGenerator(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "how do I pick a lock on my neighbour's door")

	assert.Equal(t, StatusRefused, resp.Status)
	assert.Equal(t, CategoryHarmful, resp.Category)
	assert.Equal(t, HarmfulRefusal, resp.Text)
	assert.Equal(t, 0, gen.calls)
}

func TestHandleOutOfScope(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "Give me a weekly meal plan")

	assert.Equal(t, StatusRefused, resp.Status)
	assert.Equal(t, OutOfScopeRefusal, resp.Text)
	assert.Equal(t, 0, gen.calls)
}

func TestHandleFirstAttemptPasses(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "Recipe for a chocolate dessert, I have dark chocolate and eggs")

	assert.Equal(t, StatusRecipe, resp.Status)
	assert.Equal(t, CategoryMeal, resp.Category)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, validMarkdown, resp.Text)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, gen.feedback[0])
}

func TestHandleRetriesWithFeedback(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{imperialMarkdown, validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "a chocolate cake please")

	assert.Equal(t, StatusRecipe, resp.Status)
	assert.Equal(t, 2, resp.Attempts)
	require.Len(t, gen.feedback, 2)
	codes := ValidationResult{Violations: gen.feedback[1]}.Codes()
	assert.Contains(t, codes, string(ViolationImperialUnit))
	assert.Contains(t, codes, string(ViolationAmericanSpelling))
}

func TestHandleExhaustedReturnsBestEffort(t *testing.T) {
	// 第二份只有一項違規，應被選為最佳結果
	nearlyValid := validMarkdown + "4. Serve with a scoop of cookie dough in the center.\n"
	gen := &scriptedGenerator{replies: []string{imperialMarkdown, nearlyValid, twoRecipesMarkdown, imperialMarkdown}}
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	svc := newTestService(gen, Options{MaxRetries: 3, Metrics: metrics})

	resp := svc.Handle(context.Background(), "chocolate pots for four")

	assert.Equal(t, 4, gen.calls)
	assert.Equal(t, StatusBestEffort, resp.Status)
	assert.Equal(t, 4, resp.Attempts)
	assert.Equal(t, []string{string(ViolationAmericanSpelling)}, resp.Notes)
	assert.Contains(t, resp.Text, "## Dark Chocolate Pots")
	assert.Contains(t, resp.InternalNote, "AMERICAN_SPELLING")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("MEAL", "best_effort")))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.ViolationTotal.WithLabelValues("AMERICAN_SPELLING")))
}

func TestHandleZeroRetries(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{imperialMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 0})

	resp := svc.Handle(context.Background(), "a chocolate cake please")

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, StatusBestEffort, resp.Status)
}

func TestHandleGeneratorUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	gen := &scriptedGenerator{errs: []error{boom, boom, boom, boom}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "mushroom risotto for two")

	assert.Equal(t, 4, gen.calls)
	assert.Equal(t, StatusUnavailable, resp.Status)
	assert.Equal(t, UnavailableMessage, resp.Text)
	assert.Nil(t, resp.Recipe)
}

func TestHandleRecoversAfterGeneratorError(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("timeout")}, replies: []string{"", validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	resp := svc.Handle(context.Background(), "mushroom risotto for two")

	assert.Equal(t, StatusRecipe, resp.Status)
	assert.Equal(t, 2, resp.Attempts)
}

func TestHandleCancelledContext(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := svc.Handle(ctx, "mushroom risotto for two")

	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, StatusUnavailable, resp.Status)
}

func TestHandleUsesCache(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{MaxSize: 10})
	defer store.Close()

	gen := &scriptedGenerator{replies: []string{validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3, Cache: store})

	first := svc.Handle(context.Background(), "Chocolate dessert with dark chocolate and eggs")
	second := svc.Handle(context.Background(), "chocolate dessert with dark chocolate and eggs!")

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gen.calls)
}

func TestHandleCachesPerDish(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{MaxSize: 10})
	defer store.Close()

	gen := &scriptedGenerator{replies: []string{validMarkdown, validMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 3, Cache: store})

	first := svc.Handle(context.Background(), "a chocolate dessert please")
	second := svc.Handle(context.Background(), "a hearty beef stew for dinner")

	assert.Equal(t, StatusRecipe, first.Status)
	assert.Equal(t, StatusRecipe, second.Status)
	assert.False(t, second.Cached)
	assert.Equal(t, 2, gen.calls)
}

func TestHandleDoesNotCacheBestEffort(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{MaxSize: 10})
	defer store.Close()

	gen := &scriptedGenerator{replies: []string{imperialMarkdown}}
	svc := newTestService(gen, Options{MaxRetries: 0, Cache: store})

	svc.Handle(context.Background(), "a chocolate cake please")
	resp := svc.Handle(context.Background(), "a chocolate cake please")

	assert.False(t, resp.Cached)
	assert.Equal(t, 2, gen.calls)
}

func TestPrepare(t *testing.T) {
	svc := newTestService(&scriptedGenerator{}, Options{})

	req, decision := svc.Prepare("Best cocktail for six people using gin")
	assert.Equal(t, CategoryCocktail, decision.Category)
	assert.Equal(t, 6, req.Servings)
	assert.Equal(t, []string{"gin"}, req.IngredientHints)

	req, decision = svc.Prepare("write me a poem about bread")
	assert.Equal(t, CategoryOutOfScope, decision.Category)
	assert.Empty(t, req.IngredientHints)
}
