// Package policy 維護拒絕請求所依據的規則集：有害意圖、超出範圍的請求，以及
// 不屬於一般超市常備的專門食材。規則可由 YAML 檔擴充並熱載入，也可額外掛上
// Rego 政策。
package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule 一條以正則表達式描述的意圖規則
type Rule struct {
	Name     string
	Category string
	Pattern  string
	Regex    *regexp.Regexp
	// Except 命中時整條規則不成立
	Except *regexp.Regexp
	// Weak 的超出範圍規則只在文字沒有料理或飲品詞彙時生效
	Weak bool
}

// WithExcept 回傳加上排除條件的規則副本
func (r Rule) WithExcept(pattern string) (Rule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile except of rule %q: %w", r.Name, err)
	}
	r.Except = re
	return r, nil
}

// Matches 判斷文字是否命中規則
func (r Rule) Matches(text string) bool {
	if !r.Regex.MatchString(text) {
		return false
	}
	return r.Except == nil || !r.Except.MatchString(text)
}

// NewRule 編譯規則，Pattern 一律不分大小寫
func NewRule(name, category, pattern string) (Rule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile rule %q: %w", name, err)
	}
	return Rule{Name: name, Category: category, Pattern: pattern, Regex: re}, nil
}

func mustRule(name, category, pattern string) Rule {
	r, err := NewRule(name, category, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

func exceptRule(name, category, pattern, except string) Rule {
	r, err := mustRule(name, category, pattern).WithExcept(except)
	if err != nil {
		panic(err)
	}
	return r
}

func weakRule(name, category, pattern string) Rule {
	r := mustRule(name, category, pattern)
	r.Weak = true
	return r
}

// RuleSet 某一時刻生效的完整規則集，建立後唯讀
type RuleSet struct {
	Harm       []Rule
	OutOfScope []Rule
	Specialist []string
}

// MatchHarm 回傳第一條命中的有害意圖規則
func (rs *RuleSet) MatchHarm(text string) (Rule, bool) {
	return firstMatch(rs.Harm, text)
}

// MatchOutOfScope 回傳第一條命中的超出範圍規則（不分強弱）
func (rs *RuleSet) MatchOutOfScope(text string) (Rule, bool) {
	return firstMatch(rs.OutOfScope, text)
}

// MatchScope 只比對 Weak 等於 weak 的超出範圍規則
func (rs *RuleSet) MatchScope(text string, weak bool) (Rule, bool) {
	for _, r := range rs.OutOfScope {
		if r.Weak == weak && r.Matches(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// IsSpecialist 判斷食材名稱是否含有專門食材
func (rs *RuleSet) IsSpecialist(name string) (string, bool) {
	lower := " " + strings.ToLower(name) + " "
	for _, item := range rs.Specialist {
		if strings.Contains(lower, " "+item+" ") {
			return item, true
		}
	}
	return "", false
}

func firstMatch(rules []Rule, text string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRuleSet 內建規則集
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Harm:       DefaultHarmRules(),
		OutOfScope: DefaultScopeRules(),
		Specialist: DefaultSpecialistIngredients(),
	}
}

// DefaultHarmRules 內建有害意圖規則，順序即優先序
func DefaultHarmRules() []Rule {
	return []Rule{
		mustRule("lock_picking", "illegal_entry",
			`\b(pick|picking|bypass|bypassing)\s+(a\s+|the\s+|my\s+neighbou?r'?s\s+)?(lock|padlock|deadbolt)s?\b|\block[\s-]?pick`),
		mustRule("break_in", "illegal_entry",
			`\b(break|breaking)\s+into\b|\bhack(ing)?\s+into\b`),
		mustRule("weapons", "weapons",
			`\b(pipe|nail|car)\s+bombs?\b|\b(build|make|assemble)\s+(a\s+|an\s+)?(bomb|explosive|firearm|gun|molotov)s?\b|\b(napalm|thermite|gunpowder)\b`),
		mustRule("poisoning", "violence",
			`\bpoison(ing)?\s+(someone|somebody|a\s+person|people|my|him|her|them)\b|\bundetectable\s+poison\b|\b(lethal|fatal|deadly)\s+dose\b`),
		mustRule("drink_spiking", "violence",
			`\b(spike|spiking|drug|drugging)\s+(someone'?s|somebody'?s|his|her|their|a\s+(girl|guy|woman|man|person)'?s)\s+(drink|food|cocktail)s?\b`),
		mustRule("violence", "violence",
			`\b(kill|murder|hurt|injure|stab|strangle)\s+(someone|somebody|a\s+person|people|him|her|them|my\s+(wife|husband|partner|boss|neighbou?r))\b`),
		mustRule("self_harm", "self_harm",
			`\b(kill\s+myself|suicide|self[\s-]harm)\b`),
		mustRule("illegal_drugs", "drugs",
			`\b(cook|make|synthesi[sz]e|manufacture)\s+(meth|methamphetamine|crack|heroin|fentanyl|lsd|mdma)\b`),
		mustRule("theft_fraud", "illegal_acts",
			`\bsteal(ing)?\s+(from|a|an|someone|somebody|the\s+\w+\s+from)\b|\b(shoplift|shoplifting|counterfeit|launder(ing)?\s+money)\b`),
		exceptRule("underage_drinking", "illegal_acts",
			`\b(underage|minors?)\b.*\b(drunk|alcohol|booze)\b|\b(drunk|alcohol|booze)\b.*\b(underage|minors?)\b`,
			`\balcohol[\s-]free\b|\bnon[\s-]alcoholic\b|\bmocktails?\b|\b(no|without|zero)\s+alcohol\b|\bzero[\s-]proof\b`),
		mustRule("endangered_species", "illegal_acts",
			`\b(endangered|protected)\s+(species|animals?)\b`),
	}
}

// DefaultScopeRules 內建超出範圍規則：非食物任務與四類以外的餐飲請求。
// Weak 規則的詞彙也常出現在一般料理請求中（"for cold weather"、"fits my macros"）。
func DefaultScopeRules() []Rule {
	return []Rule{
		mustRule("multi_course_menu", "food_outside_scope",
			`\b(multi|two|2|three|3|four|4|five|5)[\s-]course\b|\btasting\s+menu\b|\b(plan|design|create|write|put\s+together)\s+(me\s+)?(a\s+|an\s+|the\s+|my\s+)?([\w'-]+\s+){0,3}menus?\b`),
		mustRule("meal_plan", "food_outside_scope",
			`\bmeal[\s-]?plans?\b|\b(weekly|week'?s|7[\s-]day|seven[\s-]day)\s+(of\s+)?(meals|dinners|menu|plan)\b|\bweek\s+of\s+(meals|dinners)\b`),
		mustRule("nutrition", "food_outside_scope",
			`\bhow\s+many\s+calories\b|\bcalorie\s+count\b|\bcalories\s+(are\s+)?in\b|\bnutrition(al)?\s+(info|information|facts|breakdown|value)\b`),
		mustRule("shopping_list", "food_outside_scope",
			`\b(shopping|grocery)\s+list\b`),
		mustRule("restaurant", "food_outside_scope",
			`\bbest\s+restaurants?\b|\brestaurants?\s+(near|in|recommendation)\b|\bwhere\s+(can|should)\s+i\s+eat\b`),
		mustRule("image", "non_food_task",
			`\b(draw|generate|create|make)\s+(me\s+)?(a|an)\s+(image|picture|photo|illustration)\b`),
		mustRule("fitness", "non_food_task",
			`\b(workout|exercise|fitness|training|gym)\s+(plan|routine|programme|program|schedule)\b`),
		mustRule("writing_and_code", "non_food_task",
			`\b(write|debug|fix)\s+(me\s+)?(a\s+|an\s+|my\s+|some\s+)?(code|program|script|function|essay|poem|email|cover\s+letter|cv|resume)\b`),
		weakRule("menu", "food_outside_scope",
			`\bmenus?\b`),
		weakRule("macros", "food_outside_scope",
			`\bmacros\b`),
		weakRule("misc_tasks", "non_food_task",
			`\bhomework\b|\btranslate\b|\bweather\b|\bstock\s+(price|tip)s?\b`),
	}
}

// DefaultSpecialistIngredients 一般超市不常備、只應出現在精選加料中的食材
func DefaultSpecialistIngredients() []string {
	return []string{
		"saffron",
		"truffle",
		"truffle oil",
		"caviar",
		"foie gras",
		"yuzu",
		"wagyu",
		"fleur de sel",
		"grand marnier",
		"black garlic",
		"galangal",
		"shiso",
		"sea urchin",
		"bottarga",
		"edible gold",
	}
}
