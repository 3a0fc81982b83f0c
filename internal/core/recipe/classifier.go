package recipe

import (
	"context"
	"strings"

	"recipe-assistant/internal/core/policy"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Classifier 將請求原文分類
type Classifier interface {
	Classify(rawText string) Category
}

// Decision 分類結果與命中的比對器
type Decision struct {
	Category Category `json:"category"`
	Matcher  string   `json:"matcher"`
	Rule     string   `json:"rule,omitempty"`
}

// Matcher 依序嘗試的比對器；text 為原文，normalized 為正規化後的詞序列
type Matcher interface {
	Name() string
	Match(text, normalized string) (Decision, bool)
}

// RuleClassifier 依序套用比對器，第一個命中者決定分類；都未命中時視為 MEAL
type RuleClassifier struct {
	matchers []Matcher
}

// NewRuleClassifier 以指定順序的比對器建立分類器
func NewRuleClassifier(matchers ...Matcher) *RuleClassifier {
	return &RuleClassifier{matchers: matchers}
}

// NewDefaultClassifier 建立標準分類器：有害優先、其次超出範圍、最後判斷飲品或餐點
func NewDefaultClassifier(store *policy.Store, rego *policy.RegoEvaluator) *RuleClassifier {
	matchers := []Matcher{
		emptyMatcher{},
		harmRuleMatcher{store: store},
	}
	if rego != nil {
		matchers = append(matchers, regoMatcher{evaluator: rego})
	}
	matchers = append(matchers,
		scopeRuleMatcher{store: store},
		cocktailMatcher{},
		foodMatcher{},
		scopeRuleMatcher{store: store, weak: true},
		nonFoodRequestMatcher{},
	)
	return NewRuleClassifier(matchers...)
}

// Classify 回傳分類
func (c *RuleClassifier) Classify(rawText string) Category {
	return c.Explain(rawText).Category
}

// Explain 回傳分類及其依據
func (c *RuleClassifier) Explain(rawText string) Decision {
	normalized := normalizeText(rawText)
	for _, m := range c.matchers {
		if d, ok := m.Match(rawText, normalized); ok {
			if d.Matcher == "" {
				d.Matcher = m.Name()
			}
			return d
		}
	}
	// 模稜兩可時偏向生成食譜
	return Decision{Category: CategoryMeal, Matcher: "default"}
}

type emptyMatcher struct{}

func (emptyMatcher) Name() string { return "empty" }

func (emptyMatcher) Match(_, normalized string) (Decision, bool) {
	if normalized == "" {
		return Decision{Category: CategoryOutOfScope}, true
	}
	return Decision{}, false
}

type harmRuleMatcher struct {
	store *policy.Store
}

func (harmRuleMatcher) Name() string { return "harm_rules" }

func (m harmRuleMatcher) Match(text, _ string) (Decision, bool) {
	if r, ok := m.store.Current().MatchHarm(text); ok {
		return Decision{Category: CategoryHarmful, Rule: r.Name}, true
	}
	return Decision{}, false
}

type regoMatcher struct {
	evaluator *policy.RegoEvaluator
}

func (regoMatcher) Name() string { return "rego" }

func (m regoMatcher) Match(text, _ string) (Decision, bool) {
	if !m.evaluator.Loaded() {
		return Decision{}, false
	}
	reasons, err := m.evaluator.Deny(context.Background(), text)
	if err != nil {
		// 正則規則已先行判斷，政策評估失敗時放行
		common.LogWarn("rego 政策評估失敗", zap.Error(err))
		return Decision{}, false
	}
	if len(reasons) == 0 {
		return Decision{}, false
	}
	return Decision{Category: CategoryHarmful, Rule: strings.Join(reasons, ",")}, true
}

// scopeRuleMatcher 強規則排在料理詞彙之前，弱規則排在之後
type scopeRuleMatcher struct {
	store *policy.Store
	weak  bool
}

func (m scopeRuleMatcher) Name() string {
	if m.weak {
		return "weak_scope_rules"
	}
	return "scope_rules"
}

func (m scopeRuleMatcher) Match(text, _ string) (Decision, bool) {
	if r, ok := m.store.Current().MatchScope(text, m.weak); ok {
		return Decision{Category: CategoryOutOfScope, Rule: r.Name}, true
	}
	return Decision{}, false
}

type cocktailMatcher struct{}

func (cocktailMatcher) Name() string { return "cocktail_terms" }

func (cocktailMatcher) Match(_, normalized string) (Decision, bool) {
	if term, ok := firstTerm(normalized, cocktailTerms); ok {
		return Decision{Category: CategoryCocktail, Rule: term}, true
	}
	spirit, ok := firstTerm(normalized, spiritTerms)
	if !ok {
		return Decision{}, false
	}
	// 烈酒入菜（例如 gin 醃料、whisky 蛋糕）仍屬餐點
	if course, ok := firstTerm(normalized, courseTerms); ok {
		return Decision{Category: CategoryMeal, Matcher: "spirit_in_dish", Rule: spirit + "+" + course}, true
	}
	return Decision{Category: CategoryCocktail, Rule: spirit}, true
}

type foodMatcher struct{}

func (foodMatcher) Name() string { return "food_terms" }

func (foodMatcher) Match(_, normalized string) (Decision, bool) {
	if term, ok := firstTerm(normalized, foodTerms); ok {
		return Decision{Category: CategoryMeal, Rule: term}, true
	}
	return Decision{}, false
}

// nonFoodRequestMatcher 沒有料理詞彙、但帶有非料理主題或非料理指令的請求視為超出範圍。
// 單純的提問（"What should I make tonight?"）不算，交由預設的 MEAL 處理。
type nonFoodRequestMatcher struct{}

func (nonFoodRequestMatcher) Name() string { return "non_food_request" }

func (nonFoodRequestMatcher) Match(_, normalized string) (Decision, bool) {
	first := normalized
	if i := strings.IndexByte(normalized, ' '); i >= 0 {
		first = normalized[:i]
	}
	for _, w := range taskOpeners {
		if first == w {
			return Decision{Category: CategoryOutOfScope, Rule: "task:" + w}, true
		}
	}
	if term, ok := firstTerm(normalized, nonFoodTopics); ok {
		return Decision{Category: CategoryOutOfScope, Rule: "topic:" + term}, true
	}
	return Decision{}, false
}
