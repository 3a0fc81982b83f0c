package eval

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-assistant/internal/core/ai/queue"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultWorkers 批次評測預設並行數
const DefaultWorkers = 32

// Query 評測輸入的一列
type Query struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// Result 單筆評測結果
type Result struct {
	ID       string `json:"id"`
	Query    string `json:"query"`
	Response string `json:"response"`
	Status   string `json:"status,omitempty"`
}

// AskFunc 將一筆查詢送進食譜管線
type AskFunc func(ctx context.Context, query string) (recipe.FinalResponse, error)

// ReadQueries 讀取含 id 與 query 欄位的 CSV；缺任一欄的列會被略過
func ReadQueries(r io.Reader) ([]Query, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idCol, queryCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "id":
			idCol = i
		case "query":
			queryCol = i
		}
	}
	if idCol < 0 || queryCol < 0 {
		return nil, fmt.Errorf("csv must have id and query columns, got %v", header)
	}

	var queries []Query
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if idCol >= len(row) || queryCol >= len(row) {
			continue
		}
		id, q := strings.TrimSpace(row[idCol]), strings.TrimSpace(row[queryCol])
		if id == "" || q == "" {
			continue
		}
		queries = append(queries, Query{ID: id, Query: q})
	}
	return queries, nil
}

// ReadQueriesFile 從檔案讀取查詢
func ReadQueriesFile(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadQueries(f)
}

// Runner 以固定數量的 worker 並行執行查詢
type Runner struct {
	ask     AskFunc
	workers int
}

// NewRunner 建立 Runner
func NewRunner(ask AskFunc, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{ask: ask, workers: workers}
}

// Run 執行所有查詢，結果順序與輸入一致；單筆失敗只記錄為 Error 回應
func (r *Runner) Run(ctx context.Context, queries []Query) []Result {
	results := make([]Result, len(queries))
	if len(queries) == 0 {
		return results
	}

	workers := r.workers
	if workers > len(queries) {
		workers = len(queries)
	}
	q := queue.NewManager(config.QueueConfig{Workers: workers, MaxSize: len(queries)})
	q.Start(func(ctx context.Context, payload string) (interface{}, error) {
		return r.ask(ctx, payload)
	})
	defer q.Close()

	common.LogInfo("開始批次評測", zap.Int("queries", len(queries)), zap.Int("workers", workers))

	pending := make([]chan queue.Result, len(queries))
	for i, query := range queries {
		results[i] = Result{ID: query.ID, Query: query.Query}
		ch, err := q.Enqueue(ctx, query.ID, query.Query)
		if err != nil {
			results[i].Response = errorResponse(err)
			results[i].Status = "error"
			continue
		}
		pending[i] = ch
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		var res queue.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			res = queue.Result{Error: ctx.Err()}
		}
		if res.Error != nil {
			results[i].Response = errorResponse(res.Error)
			results[i].Status = "error"
			continue
		}
		resp, ok := res.Value.(recipe.FinalResponse)
		if !ok {
			results[i].Response = "Error: no reply"
			results[i].Status = "error"
			continue
		}
		results[i].Response = resp.Text
		results[i].Status = string(resp.Status)
	}
	return results
}

func errorResponse(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// ResultsPath 產生 results_<timestamp>.json 路徑
func ResultsPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("results_%s.json", now.Format("20060102_150405")))
}

// WriteResults 寫出 JSON 與同名 CSV，回傳 CSV 路徑
func WriteResults(path string, results []Result) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	jf, err := os.Create(path)
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(jf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if results == nil {
		results = []Result{}
	}
	if err := enc.Encode(results); err != nil {
		jf.Close()
		return "", fmt.Errorf("write json: %w", err)
	}
	if err := jf.Close(); err != nil {
		return "", err
	}

	csvPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	cf, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer cf.Close()

	w := csv.NewWriter(cf)
	if err := w.Write([]string{"id", "query", "response"}); err != nil {
		return "", err
	}
	for _, r := range results {
		if err := w.Write([]string{r.ID, r.Query, r.Response}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return csvPath, nil
}
