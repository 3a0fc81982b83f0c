package recipe

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 判斷文字是否與料理相關的詞彙
var foodTerms = []string{
	// 動作與場合
	"recipe", "cook", "cooking", "bake", "baking", "roast", "grill", "fry", "braise", "stew",
	"dinner", "lunch", "supper", "brunch", "breakfast", "meal", "dish", "food", "eat", "hungry",
	"craving", "tasty", "delicious", "fridge", "leftover", "leftovers", "ingredient", "ingredients",
	"kitchen", "starter", "starters", "main", "mains", "dessert", "desserts", "pudding", "appetiser",
	"appetizer", "snack", "vegetarian", "vegan", "gluten-free",
	// 菜式
	"soup", "salad", "pasta", "risotto", "curry", "pie", "cake", "tart", "bread", "sauce",
	"sandwich", "burger", "pizza", "noodles", "stir-fry", "casserole", "traybake", "crumble",
	"biscuit", "biscuits", "brownie", "brownies", "mousse", "omelette", "pancake", "pancakes",
	// 食材
	"chicken", "beef", "pork", "lamb", "duck", "fish", "salmon", "cod", "prawn", "prawns",
	"mince", "sausage", "sausages", "bacon", "ham", "egg", "eggs", "cheese", "butter", "cream",
	"milk", "flour", "sugar", "chocolate", "rice", "potato", "potatoes", "tomato", "tomatoes",
	"onion", "onions", "garlic", "mushroom", "mushrooms", "carrot", "carrots", "spinach",
	"pepper", "peppers", "courgette", "aubergine", "lentils", "chickpeas", "beans", "tofu",
	"lemon", "lime", "apple", "apples", "banana", "bananas", "berries", "strawberries", "honey",
}

// 明確指向飲品的詞彙
var cocktailTerms = []string{
	"cocktail", "cocktails", "mocktail", "mocktails", "drink", "drinks", "martini", "negroni",
	"margarita", "margaritas", "mojito", "mojitos", "spritz", "daiquiri", "old fashioned",
	"highball", "aperitif", "aperitivo", "punch", "julep", "collins", "fizz", "gimlet",
	"manhattan", "cosmopolitan", "bellini", "sangria",
}

// 烈酒：無菜式詞彙時視為調酒請求
var spiritTerms = []string{
	"gin", "vodka", "rum", "tequila", "mezcal", "whisky", "whiskey", "bourbon", "brandy",
	"cognac", "vermouth", "campari", "aperol", "prosecco", "champagne", "cointreau",
}

// 與烈酒並存時代表料理而非飲品的菜式詞彙
var courseTerms = []string{
	"starter", "main", "dessert", "pudding", "cake", "tart", "pie", "sauce", "stew", "soup",
	"risotto", "dinner", "lunch", "supper", "dish", "meal", "bake", "roast", "glaze", "marinade",
	"trifle", "cheesecake", "ice cream", "sorbet",
}

// 非料理的祈使句開頭
var taskOpeners = []string{
	"write", "translate", "summarise", "summarize", "calculate", "solve", "compose", "draft",
	"debug", "code", "define",
}

// 無料理詞彙時代表非料理主題的詞彙
var nonFoodTopics = []string{
	"capital", "country", "president", "prime minister", "election", "politics", "history",
	"physics", "chemistry", "maths", "math", "equation", "science", "planet", "universe",
	"weather", "forecast", "football", "score", "film", "movie", "tv", "song", "lyrics",
	"music", "novel", "poem", "essay", "story", "joke", "email", "letter", "code", "python",
	"javascript", "software", "computer", "laptop", "phone", "website", "app", "stock",
	"crypto", "bitcoin", "car", "tax", "mortgage", "job", "interview", "cv", "resume",
	"flight", "hotel", "train", "meaning", "definition", "sentence", "grammar", "homework",
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	"nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "a couple": 2, "a couple of": 2,
	"couple": 2, "a dozen": 12, "dozen": 12, "a pair": 2,
}

// parseCount 解析數字或英文數詞
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := numberWords[s]
	return n, ok
}

// 英式拼寫對照（美式 → 英式）
var britishSpelling = map[string]string{
	"color": "colour", "colors": "colours", "colored": "coloured",
	"flavor": "flavour", "flavors": "flavours", "flavored": "flavoured", "flavorful": "flavourful",
	"favorite": "favourite", "savory": "savoury", "center": "centre", "centers": "centres",
	"meter": "metre", "meters": "metres", "liter": "litre", "liters": "litres", "milliliter": "millilitre", "milliliters": "millilitres",
	"fiber": "fibre", "gray": "grey", "mold": "mould", "molds": "moulds", "aluminum": "aluminium",
	"caramelize": "caramelise", "caramelized": "caramelised", "caramelizing": "caramelising",
	"tenderize": "tenderise", "tenderized": "tenderised",
	"zucchini": "courgette", "eggplant": "aubergine", "cilantro": "coriander", "arugula": "rocket",
	"scallion": "spring onion", "scallions": "spring onions", "shrimp": "prawns",
	"broil": "grill", "broiler": "grill", "skillet": "frying pan",
	"powdered sugar": "icing sugar", "confectioners' sugar": "icing sugar",
	"all-purpose flour": "plain flour", "heavy cream": "double cream", "ground beef": "beef mince",
	"cookie sheet": "baking tray", "plastic wrap": "cling film",
}

var americanSpellingRe = buildTermRegex(britishSpelling)

// buildTermRegex 以完整詞比對對照表中的詞，長詞優先
func buildTermRegex(m map[string]string) *regexp.Regexp {
	terms := make([]string, 0, len(m))
	for k := range m {
		terms = append(terms, regexp.QuoteMeta(k))
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

var (
	// 分量欄位中的英制單位
	imperialUnitRe = regexp.MustCompile(`(?i)\b(oz|ounces?|lbs?|pounds?|cups?|pints?|quarts?|gallons?|inch(?:es)?)\b|fl\.?\s*oz`)
	// 自由文字中「數字 + 英制單位」
	imperialQuantityRe = regexp.MustCompile(`(?i)\b\d+(?:[./]\d+)?\s*-?\s*(oz|ounces?|lbs?|pounds?|cups?|pints?|quarts?|gallons?|inch(?:es)?)\b`)
	fahrenheitRe       = regexp.MustCompile(`(?i)\d\s*°\s*f\b|\bfahrenheit\b|\b\d{3}\s*f\b`)
)

// findImperial 回傳文字中出現的英制用語
func findImperial(text string, measurement bool) []string {
	var found []string
	if measurement {
		found = append(found, imperialUnitRe.FindAllString(text, -1)...)
	} else {
		found = append(found, imperialQuantityRe.FindAllString(text, -1)...)
	}
	found = append(found, fahrenheitRe.FindAllString(text, -1)...)
	return found
}

var wordRe = regexp.MustCompile(`[a-z0-9]+(?:['-][a-z]+)*`)

// normalizeText 轉小寫、統一引號並以單一空白連接詞語
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`).Replace(text)
	return strings.Join(wordRe.FindAllString(text, -1), " ")
}

// containsTerm 在正規化文字中比對完整詞，允許複數 s/es
func containsTerm(normalized, term string) bool {
	padded := " " + normalized + " "
	for _, form := range []string{term, term + "s", term + "es"} {
		if strings.Contains(padded, " "+form+" ") {
			return true
		}
	}
	return false
}

// firstTerm 回傳第一個出現在文字中的詞
func firstTerm(normalized string, terms []string) (string, bool) {
	for _, t := range terms {
		if containsTerm(normalized, t) {
			return t, true
		}
	}
	return "", false
}
