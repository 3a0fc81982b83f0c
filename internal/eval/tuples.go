package eval

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"recipe-assistant/internal/core/ai/provider"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// 合成查詢的維度
var (
	Cuisines = []string{"Italian", "Chinese", "Indian", "Japanese", "Thai", "French", "Mediterranean", "British"}
	Courses  = []string{"starter", "main", "dessert", "cocktail"}
	// 空字串代表無飲食限制
	Dietary = []string{"vegetarian", "vegan", "gluten-free", "dairy-free", "nut-free", ""}
)

// Tuple 一組 (菜系, 類別, 飲食限制)
type Tuple struct {
	Cuisine string `json:"cuisine"`
	Course  string `json:"course"`
	Dietary string `json:"dietary"`
}

func (t Tuple) String() string {
	dietary := t.Dietary
	if dietary == "" {
		dietary = "none"
	}
	return fmt.Sprintf("[%s, %s, %s]", t.Cuisine, t.Course, dietary)
}

// SyntheticQuery 由 Tuple 產生的查詢
type SyntheticQuery struct {
	Tuple
	Query string `json:"query"`
}

// GenerateTuples 隨機產生 n 組 Tuple
func GenerateTuples(n int, rng *rand.Rand) []Tuple {
	tuples := make([]Tuple, 0, n)
	for i := 0; i < n; i++ {
		tuples = append(tuples, Tuple{
			Cuisine: Cuisines[rng.Intn(len(Cuisines))],
			Course:  Courses[rng.Intn(len(Courses))],
			Dietary: Dietary[rng.Intn(len(Dietary))],
		})
	}
	return tuples
}

// TemplateQuery 不經生成器，直接組出一句查詢
func TemplateQuery(t Tuple) string {
	var b strings.Builder
	if t.Course == "cocktail" {
		fmt.Fprintf(&b, "Could you suggest %s %s-inspired cocktail", article(t.Cuisine), t.Cuisine)
	} else {
		fmt.Fprintf(&b, "Could you suggest %s %s %s", article(t.Cuisine), t.Cuisine, t.Course)
	}
	if t.Dietary != "" {
		fmt.Fprintf(&b, " that is %s", t.Dietary)
	}
	b.WriteString("?")
	return b.String()
}

func article(word string) string {
	if word != "" && strings.ContainsRune("AEIOUaeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func queryPrompt(t Tuple) string {
	dietary := "with no specific dietary restrictions"
	if t.Dietary != "" {
		dietary = fmt.Sprintf("with a %s dietary requirement", t.Dietary)
	}
	return fmt.Sprintf(`Generate a natural user query that someone might ask a recipe chatbot.
The query should be about %s cuisine, for a %s, %s.

Return ONLY the query text, nothing else. Make it sound natural and varied.
Examples of good queries:
- "What's a quick Italian main I can make tonight?"
- "I need a vegan dessert idea"
- "Can you suggest a gluten-free Thai starter?"

Generate one query:`, t.Cuisine, t.Course, dietary)
}

// QueryGenerator 透過生成器把 Tuple 改寫成自然語句
type QueryGenerator struct {
	completer recipe.Completer
}

// NewQueryGenerator 建立 QueryGenerator
func NewQueryGenerator(completer recipe.Completer) *QueryGenerator {
	return &QueryGenerator{completer: completer}
}

// Generate 產生單一查詢
func (g *QueryGenerator) Generate(ctx context.Context, t Tuple) (string, error) {
	content, err := g.completer.Complete(ctx, []provider.Message{{Role: "user", Content: queryPrompt(t)}})
	if err != nil {
		return "", fmt.Errorf("generate query for %s: %w", t, err)
	}
	query := strings.Trim(strings.TrimSpace(content), `"“”`)
	if query == "" {
		return "", fmt.Errorf("generate query for %s: empty reply", t)
	}
	return query, nil
}

// GenerateAll 逐一產生查詢；任一失敗即回傳已完成的部分與錯誤
func (g *QueryGenerator) GenerateAll(ctx context.Context, tuples []Tuple) ([]SyntheticQuery, error) {
	out := make([]SyntheticQuery, 0, len(tuples))
	for _, t := range tuples {
		q, err := g.Generate(ctx, t)
		if err != nil {
			common.LogError("合成查詢失敗", zap.Error(err), zap.Int("done", len(out)))
			return out, err
		}
		out = append(out, SyntheticQuery{Tuple: t, Query: q})
	}
	return out, nil
}

// Templated 以 TemplateQuery 產生所有查詢
func Templated(tuples []Tuple) []SyntheticQuery {
	out := make([]SyntheticQuery, len(tuples))
	for i, t := range tuples {
		out[i] = SyntheticQuery{Tuple: t, Query: TemplateQuery(t)}
	}
	return out
}

// WriteQueriesCSV 以 id,query 格式輸出，id 從 1 開始
func WriteQueriesCSV(w io.Writer, queries []SyntheticQuery) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "query"}); err != nil {
		return err
	}
	for i, q := range queries {
		if err := cw.Write([]string{strconv.Itoa(i + 1), q.Query}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
