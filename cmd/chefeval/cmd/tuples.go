package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"recipe-assistant/internal/core/ai/openrouter"
	aiService "recipe-assistant/internal/core/ai/service"
	"recipe-assistant/internal/eval"
	"recipe-assistant/internal/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	tuplesCountFlag    int
	tuplesGenerateFlag bool
	tuplesOutputFlag   string
	tuplesSeedFlag     int64
)

var tuplesCmd = &cobra.Command{
	Use:   "tuples",
	Short: "Generate (cuisine, course, dietary) tuples and synthetic queries",
	Long: `Generate random (cuisine, course, dietary) tuples.

With --generate each tuple is turned into a natural query by the generator model.
With --output the queries are written as an id,query CSV ready for 'chefeval bulk'.
Without --generate the CSV holds templated queries.

Examples:
  chefeval tuples -n 5
  chefeval tuples -n 20 --generate -o data/synthetic_queries.csv`,
	RunE: runTuples,
}

func init() {
	tuplesCmd.Flags().IntVarP(&tuplesCountFlag, "count", "n", 10, "Number of tuples to generate")
	tuplesCmd.Flags().BoolVar(&tuplesGenerateFlag, "generate", false, "Generate natural queries with the model")
	tuplesCmd.Flags().StringVarP(&tuplesOutputFlag, "output", "o", "", "Output CSV path")
	tuplesCmd.Flags().Int64Var(&tuplesSeedFlag, "seed", 0, "Random seed (0 uses the current time)")
	rootCmd.AddCommand(tuplesCmd)
}

func runTuples(cmd *cobra.Command, args []string) error {
	seed := tuplesSeedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tuples := eval.GenerateTuples(tuplesCountFlag, rand.New(rand.NewSource(seed)))
	out := cmd.OutOrStdout()

	var queries []eval.SyntheticQuery
	if tuplesGenerateFlag {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc := aiService.NewService(openrouter.NewClient(cfg.OpenRouter), 200, 1.0)
		defer svc.Close()

		queries, err = eval.NewQueryGenerator(svc).GenerateAll(context.Background(), tuples)
		if err != nil {
			return err
		}
		for _, q := range queries {
			fmt.Fprintln(out, q.Tuple)
			fmt.Fprintf(out, "  -> %s\n\n", q.Query)
		}
	} else {
		for _, t := range tuples {
			fmt.Fprintln(out, t)
		}
		queries = eval.Templated(tuples)
	}

	if tuplesOutputFlag == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(tuplesOutputFlag), 0o755); err != nil {
		return err
	}
	f, err := os.Create(tuplesOutputFlag)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := eval.WriteQueriesCSV(f, queries); err != nil {
		return fmt.Errorf("write queries: %w", err)
	}
	eval.Success(out, fmt.Sprintf("Saved %d queries to %s", len(queries), tuplesOutputFlag))
	return nil
}
