package recipe

import (
	"regexp"
	"sort"
	"strings"

	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// MaxIngredientHints 最多保留的食材提示數
const MaxIngredientHints = 5

// DefaultServings 未指定份量時的預設人數
const DefaultServings = 2

var (
	// 份量表達式，依優先順序嘗試
	servingsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:serves?|serving|feeds?)\s+(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|a dozen|a couple)\b`),
		regexp.MustCompile(`\b(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|a dozen|a couple of|a couple)\s+(?:people|persons|guests|servings|portions|adults|friends|of us)\b`),
		regexp.MustCompile(`\bfor\s+(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|a dozen|a couple|a pair)\b(?:\s+([a-z°]+))?`),
	}

	// for 之後出現這些詞時，數字不是人數
	nonServingUnits = map[string]bool{
		"minutes": true, "minute": true, "mins": true, "min": true, "hours": true, "hour": true,
		"hrs": true, "seconds": true, "days": true, "weeks": true, "degrees": true, "°": true,
		"g": true, "kg": true, "ml": true, "l": true, "grams": true, "calories": true, "quid": true,
		"pounds": true, "euros": true, "dollars": true,
	}

	hintLeadRe = regexp.MustCompile(`\b(?:i\s+have\s+got|i\s+have|i've\s+got|i\s+got|i've|we\s+have|using|use|made\s+with|with|containing|including|featuring)\s+`)

	exclusionLeadRe = regexp.MustCompile(`\b(?:i\s+(?:don't|do\s+not|haven't)\s+(?:have|got)(?:\s+any)?|no|without|out\s+of|allergic\s+to|can't\s+eat|cannot\s+eat|avoid|avoiding|hate|dislike|except)\s+`)

	freeFromRe = regexp.MustCompile(`\b([a-z]+)[\s-]free\b`)

	// 清單在這些詞之前截斷
	listStopRe = regexp.MustCompile(`\s+(?:for|but|please|that|which|so|to|in|on|because|if|when|without|except|as|no|i|we|using|with|serves?|feeds?)\b|,\s*(?:but|and\s+no)\b`)

	listSplitRe = regexp.MustCompile(`\s*(?:,|\band\b|\bor\b|&|\bplus\b|/)\s*`)

	leadingFillerRe = regexp.MustCompile(`^(?:(?:some|a|an|the|any|few|a few|lots of|plenty of|a bit of|a little|a little bit of|bit of|loads of|leftover|left over|my|our)\s+)+`)
)

// 不是食材的名詞
var nonIngredientWords = map[string]bool{
	"": true, "it": true, "them": true, "that": true, "this": true, "me": true, "us": true,
	"twist": true, "friends": true, "family": true, "kids": true, "children": true, "guests": true,
	"people": true, "fuss": true, "hassle": true, "stress": true, "time": true, "oven": true,
	"recipe": true, "dessert": true, "starter": true, "main": true, "cocktail": true, "drink": true,
	"something": true, "anything": true, "nothing": true, "more": true, "less": true, "idea": true,
	"ideas": true,
}

// 「X-free」中不代表食材的 X
var freeFromIgnore = map[string]bool{
	"feel": true, "hands": true, "duty": true, "tax": true, "stress": true, "fuss": true,
	"hassle": true, "mess": true, "guilt": true, "care": true,
}

// Normalizer 從原文抽取食材提示、份量與排除項
type Normalizer struct {
	defaultServings int
	maxServings     int
}

// NewNormalizer 建立 Normalizer；maxServings 為 0 時不設上限
func NewNormalizer(defaultServings, maxServings int) *Normalizer {
	if defaultServings <= 0 {
		defaultServings = DefaultServings
	}
	return &Normalizer{defaultServings: defaultServings, maxServings: maxServings}
}

// Normalize 將已接受的請求轉成 Request，不會失敗
func (n *Normalizer) Normalize(rawText string, category Category) Request {
	text := strings.ToLower(rawText)
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)

	req := Request{
		RawText:  rawText,
		Category: category,
		Servings: n.servings(text),
	}

	req.Exclusions = extractExclusions(text)

	excluded := make(map[string]bool, len(req.Exclusions))
	for _, e := range req.Exclusions {
		excluded[e] = true
	}

	var hints []string
	seen := make(map[string]bool)
	for _, h := range extractList(text, hintLeadRe) {
		if excluded[h] || seen[h] {
			continue
		}
		seen[h] = true
		hints = append(hints, h)
	}

	if len(hints) > MaxIngredientHints {
		req.Overflow = hints[MaxIngredientHints:]
		hints = hints[:MaxIngredientHints]
		common.LogWarn("食材提示超過上限，僅保留前幾項",
			zap.Int("max", MaxIngredientHints),
			zap.Strings("dropped", req.Overflow),
		)
	}
	req.IngredientHints = hints
	if req.IngredientHints == nil {
		req.IngredientHints = []string{}
	}
	return req
}

func (n *Normalizer) servings(text string) int {
	for _, re := range servingsPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 2 && nonServingUnits[m[2]] {
				continue
			}
			count, ok := parseCount(m[1])
			if !ok {
				continue
			}
			if count <= 0 {
				return n.defaultServings
			}
			if n.maxServings > 0 && count > n.maxServings {
				common.LogWarn("份量超過上限",
					zap.Int("requested", count),
					zap.Int("max", n.maxServings),
				)
				return n.maxServings
			}
			return count
		}
	}
	return n.defaultServings
}

// extractExclusions 抽取排除項，回傳排序且不重複的小寫清單
func extractExclusions(text string) []string {
	set := make(map[string]bool)
	for _, item := range extractList(text, exclusionLeadRe) {
		set[item] = true
	}
	for _, m := range freeFromRe.FindAllStringSubmatch(text, -1) {
		if !freeFromIgnore[m[1]] {
			set[m[1]] = true
		}
	}

	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// extractList 找出每個引導詞之後到句尾的清單並切成單項
func extractList(text string, lead *regexp.Regexp) []string {
	var items []string
	for _, m := range lead.FindAllStringIndex(text, -1) {
		rest := text[m[1]:]
		if i := strings.IndexAny(rest, ".;!?"); i >= 0 {
			rest = rest[:i]
		}
		segment := " " + rest
		if loc := listStopRe.FindStringIndex(segment); loc != nil {
			segment = segment[:loc[0]]
		}
		for _, part := range listSplitRe.Split(segment, -1) {
			if item := cleanItem(part); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func cleanItem(part string) string {
	part = strings.Trim(strings.TrimSpace(part), `"'()`)
	part = leadingFillerRe.ReplaceAllString(part, "")
	part = strings.TrimSpace(part)
	if nonIngredientWords[part] || strings.ContainsAny(part, "0123456789") {
		return ""
	}
	if len(strings.Fields(part)) > 4 {
		return ""
	}
	return part
}
