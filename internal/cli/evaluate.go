package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzpen-project/matzpen/internal/cache"
	"github.com/matzpen-project/matzpen/internal/eval"
	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/llm"
	"github.com/matzpen-project/matzpen/internal/model"
	"github.com/matzpen-project/matzpen/internal/report"
	"github.com/matzpen-project/matzpen/internal/store"
)

var (
	evalErrorsOut  string
	evalStoreRun   bool
	evalHistory    bool
	evalLLM        bool
	evalHistoryLen int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <tagged.csv>",
	Short: "Evaluate the model against human tags",
	Long: `Evaluate compares the model's decisions with the returned human tags:
confusion matrix, precision/recall/F1/accuracy/specificity, error
breakdowns by sector, urgency, and reliability, and a cross analysis
of the worst sector. Records with unreadable decisions are excluded
and counted, never silently dropped.

With --store the run is appended to the local history database; with
--llm an LLM writes advisory observations about the computed numbers.

Example:
  matzpen evaluate tagged_results.csv --store --errors-out errors.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalErrorsOut, "errors-out", "", "export misclassified records to this CSV")
	evaluateCmd.Flags().BoolVar(&evalStoreRun, "store", false, "append this run to the history database")
	evaluateCmd.Flags().BoolVar(&evalHistory, "history", false, "list stored runs instead of evaluating")
	evaluateCmd.Flags().IntVar(&evalHistoryLen, "history-limit", 20, "number of stored runs to list")
	evaluateCmd.Flags().BoolVar(&evalLLM, "llm", false, "generate LLM observations (requires llm.provider config)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if evalHistory {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		defer st.Close()
		runs, err := st.ListRuns(evalHistoryLen)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		report.History(os.Stdout, runs)
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("a tagged CSV is required (or use --history)")
	}

	records, err := ingest.ReadLabeled(args[0])
	if err != nil {
		return fmt.Errorf("loading tagged records: %w", err)
	}

	ev := eval.Evaluate(records)
	valid, _ := eval.Valid(records)
	for _, attr := range []eval.Attribute{eval.BySector, eval.ByUrgency, eval.ByReliability} {
		ev.Segments = append(ev.Segments, eval.SegmentBy(valid, attr)...)
	}
	cross := eval.Cross(valid, eval.BySector, eval.ByReliability)

	observations := ""
	if evalLLM {
		text, err := generateObservations(cfg, ev, &cross)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM observations failed: %v\n", err)
		} else {
			observations = text
		}
	}

	report.Evaluation(os.Stdout, ev, &cross, observations)

	if evalErrorsOut != "" {
		table := eval.ErrorTable(records)
		types := make([]string, len(table))
		errRecords := make([]model.LabeledRecord, len(table))
		for i, e := range table {
			types[i] = string(e.Type)
			errRecords[i] = e.Record
		}
		if err := ingest.WriteErrors(evalErrorsOut, types, errRecords); err != nil {
			return fmt.Errorf("writing error export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Error export: %s (%d records)\n", evalErrorsOut, len(table))
	}

	if evalStoreRun {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		defer st.Close()
		runID, err := st.SaveEvaluation(args[0], ev, ev.Segments)
		if err != nil {
			return fmt.Errorf("storing run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Stored run %d in %s\n", runID, cfg.Store.Path)
	}
	return nil
}

func generateObservations(cfg *model.Config, ev model.Evaluation, cross *model.CrossStats) (string, error) {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return "", err
	}
	if provider == nil {
		return "", fmt.Errorf("no LLM provider configured (set llm.provider)")
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	observer := llm.NewObserver(provider, cfg.LLM.RequestsPerMinute, c)

	resp, err := observer.Observe(context.Background(), llm.ObservationRequest{
		Evaluation: ev,
		Cross:      cross,
		Model:      cfg.LLM.Model,
		MaxTokens:  cfg.LLM.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
