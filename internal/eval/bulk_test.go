package eval

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"recipe-assistant/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueries(t *testing.T) {
	in := "\ufeffid,query,notes\n1,Chocolate dessert please,x\n2,,missing query\n,orphan query,\n3, gin cocktail for two ,\n"
	queries, err := ReadQueries(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []Query{
		{ID: "1", Query: "Chocolate dessert please"},
		{ID: "3", Query: "gin cocktail for two"},
	}, queries)
}

func TestReadQueriesRequiresColumns(t *testing.T) {
	_, err := ReadQueries(strings.NewReader("name,text\na,b\n"))
	assert.Error(t, err)

	queries, err := ReadQueries(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, queries)
}

func TestRunnerPreservesOrderAndRecordsErrors(t *testing.T) {
	var calls int32
	ask := func(ctx context.Context, query string) (recipe.FinalResponse, error) {
		atomic.AddInt32(&calls, 1)
		if query == "boom" {
			return recipe.FinalResponse{}, errors.New("generator down")
		}
		// 讓先送出的查詢較晚完成
		if query == "q1" {
			time.Sleep(20 * time.Millisecond)
		}
		return recipe.FinalResponse{Status: recipe.StatusRecipe, Text: "answer to " + query}, nil
	}

	queries := []Query{{ID: "1", Query: "q1"}, {ID: "2", Query: "boom"}, {ID: "3", Query: "q3"}}
	results := NewRunner(ask, 8).Run(context.Background(), queries)

	require.Len(t, results, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, Result{ID: "1", Query: "q1", Response: "answer to q1", Status: "recipe"}, results[0])
	assert.Equal(t, "2", results[1].ID)
	assert.Equal(t, "Error: generator down", results[1].Response)
	assert.Equal(t, "error", results[1].Status)
	assert.Equal(t, "answer to q3", results[2].Response)
}

func TestRunnerEmpty(t *testing.T) {
	results := NewRunner(nil, 0).Run(context.Background(), nil)
	assert.Empty(t, results)
}

func TestResultsPath(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("results", "results_20250304_050607.json"), ResultsPath("results", now))
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results_x.json")
	results := []Result{
		{ID: "1", Query: "dessert <quick>", Response: "## Pots\n### Method\n1. Chill & serve.\n", Status: "recipe"},
		{ID: "2", Query: "pick a lock", Response: "Sorry, no.", Status: "refused"},
	}

	csvPath, err := WriteResults(path, results)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(path, ".json")+".csv", csvPath)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Chill & serve")
	assert.Contains(t, string(raw), "<quick>")

	var decoded []Result
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, results, decoded)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "query", "response"}, rows[0])
	assert.Equal(t, results[0].Response, rows[1][2])
}

func TestRenderResult(t *testing.T) {
	out := RenderResult(0, 2, Result{ID: "7", Query: "gin fizz", Response: "## Gin Fizz\n", Status: "recipe"})

	assert.Contains(t, out, "Result 1/2 - ID: 7")
	assert.Contains(t, out, "gin fizz")
	assert.Contains(t, out, "## Gin Fizz")
}
