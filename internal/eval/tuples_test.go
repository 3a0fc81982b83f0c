package eval

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"recipe-assistant/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	replies []string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, messages []provider.Message) (string, error) {
	s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func TestGenerateTuples(t *testing.T) {
	a := GenerateTuples(20, rand.New(rand.NewSource(42)))
	b := GenerateTuples(20, rand.New(rand.NewSource(42)))

	require.Len(t, a, 20)
	assert.Equal(t, a, b)
	for _, tp := range a {
		assert.Contains(t, Cuisines, tp.Cuisine)
		assert.Contains(t, Courses, tp.Course)
		assert.Contains(t, Dietary, tp.Dietary)
	}
	assert.Empty(t, GenerateTuples(0, rand.New(rand.NewSource(1))))
}

func TestTupleString(t *testing.T) {
	assert.Equal(t, "[Thai, starter, vegan]", Tuple{"Thai", "starter", "vegan"}.String())
	assert.Equal(t, "[French, dessert, none]", Tuple{"French", "dessert", ""}.String())
}

func TestTemplateQuery(t *testing.T) {
	assert.Equal(t, "Could you suggest an Italian main that is vegetarian?", TemplateQuery(Tuple{"Italian", "main", "vegetarian"}))
	assert.Equal(t, "Could you suggest a Japanese-inspired cocktail?", TemplateQuery(Tuple{"Japanese", "cocktail", ""}))
}

func TestQueryGenerator(t *testing.T) {
	sc := &stubCompleter{replies: []string{` "Any ideas for a vegan Thai starter?" `, "Fancy a French pudding"}}
	g := NewQueryGenerator(sc)

	out, err := g.GenerateAll(context.Background(), []Tuple{{"Thai", "starter", "vegan"}, {"French", "dessert", ""}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Any ideas for a vegan Thai starter?", out[0].Query)
	assert.Equal(t, "French", out[1].Cuisine)

	assert.Contains(t, sc.prompts[0], "about Thai cuisine, for a starter, with a vegan dietary requirement")
	assert.Contains(t, sc.prompts[1], "with no specific dietary restrictions")
}

func TestQueryGeneratorErrors(t *testing.T) {
	g := NewQueryGenerator(&stubCompleter{err: errors.New("offline")})
	out, err := g.GenerateAll(context.Background(), []Tuple{{"Thai", "main", ""}})
	assert.Error(t, err)
	assert.Empty(t, out)

	_, err = NewQueryGenerator(&stubCompleter{replies: []string{"  "}}).Generate(context.Background(), Tuple{"Thai", "main", ""})
	assert.Error(t, err)
}

func TestWriteQueriesCSV(t *testing.T) {
	var buf bytes.Buffer
	qs := Templated([]Tuple{{"Indian", "main", ""}, {"British", "dessert", "nut-free"}})
	require.NoError(t, WriteQueriesCSV(&buf, qs))

	assert.Equal(t, "id,query\n"+
		"1,Could you suggest an Indian main?\n"+
		"2,Could you suggest a British dessert that is nut-free?\n", buf.String())
}
