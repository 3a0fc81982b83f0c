package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"recipe-assistant/internal/eval"

	"github.com/spf13/cobra"
)

var (
	bulkCSVFlag     string
	bulkWorkersFlag int
	bulkOutDirFlag  string
	bulkQuietFlag   bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Run a CSV of queries through the recipe pipeline",
	Long: `Read a CSV file with 'id' and 'query' columns, run every query through
the full pipeline concurrently and save the replies for manual review.

Results are written to <out>/results_<timestamp>.json and a sibling .csv.
A failing query is recorded as an "Error: ..." reply and never stops the run.

Examples:
  chefeval bulk
  chefeval bulk --csv data/queries.csv --workers 8`,
	RunE: runBulk,
}

func init() {
	bulkCmd.Flags().StringVar(&bulkCSVFlag, "csv", "data/sample_queries.csv", "CSV file with id and query columns")
	bulkCmd.Flags().IntVarP(&bulkWorkersFlag, "workers", "w", eval.DefaultWorkers, "Number of concurrent workers")
	bulkCmd.Flags().StringVarP(&bulkOutDirFlag, "out", "o", "results", "Directory for result files")
	bulkCmd.Flags().BoolVarP(&bulkQuietFlag, "quiet", "q", false, "Do not print each result")
	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, args []string) error {
	queries, err := eval.ReadQueriesFile(bulkCSVFlag)
	if err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries found in %s", bulkCSVFlag)
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	workers := bulkWorkersFlag
	if workers > len(queries) {
		workers = len(queries)
	}
	eval.Info(out, fmt.Sprintf("Processing %d queries with %d workers...", len(queries), workers))

	// 直接呼叫管線，並行度由 Runner 控制
	results := eval.NewRunner(a.Recipes.Ask, workers).Run(ctx, queries)

	if !bulkQuietFlag {
		eval.PrintResults(out, results)
	}
	eval.Info(out, "All queries processed.")

	path := eval.ResultsPath(bulkOutDirFlag, time.Now())
	if _, err := eval.WriteResults(path, results); err != nil {
		eval.Failure(os.Stderr, err.Error())
		return err
	}
	eval.Success(out, fmt.Sprintf("Saved %d results to %s", len(results), path))
	return nil
}
