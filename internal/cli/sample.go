package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/model"
	"github.com/matzpen-project/matzpen/internal/report"
	"github.com/matzpen-project/matzpen/internal/sample"
)

var (
	sampleTaggingOut string
	sampleReportOut  string
	sampleSeed       int64
)

var sampleCmd = &cobra.Command{
	Use:   "sample <scored.csv>",
	Short: "Draw the stratified tagging sample",
	Long: `Sample draws the human-review sample from scored reports: positives
stratified by sector, negatives split across difficulty buckets, and
forced edge cases balanced between positive and negative extractions.

The draw is seeded; the same input and seed always produce the same
sample. When a category cannot be filled the shortfall is reported,
never padded.

Example:
  matzpen sample scored_reports.csv --tagging-out tagging_task.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVar(&sampleTaggingOut, "tagging-out", "tagging_task.csv", "tagging task CSV path (send to taggers)")
	sampleCmd.Flags().StringVar(&sampleReportOut, "report-out", "sample_report.txt", "sample composition report path")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "override the sampling seed (0 = config)")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if sampleSeed != 0 {
		cfg.Sampling.Seed = sampleSeed
	}

	scored, err := ingest.ReadScored(args[0])
	if err != nil {
		return fmt.Errorf("loading scored reports: %w", err)
	}

	drawn := sample.New(cfg.Sampling).Draw(scored)

	byID := make(map[string]model.ScoredReport, len(scored))
	for _, rec := range scored {
		byID[rec.Report.ID] = rec
	}

	if err := ingest.WriteTagging(sampleTaggingOut, drawn, byID); err != nil {
		return fmt.Errorf("writing tagging file: %w", err)
	}

	if sampleReportOut != "" {
		f, err := os.Create(sampleReportOut)
		if err != nil {
			return fmt.Errorf("creating sample report: %w", err)
		}
		report.SampleComposition(f, drawn, byID)
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing sample report: %w", err)
		}
	}
	report.SampleComposition(os.Stdout, drawn, byID)

	fmt.Fprintf(os.Stderr, "\nTagging task: %s (%d reports)\n", sampleTaggingOut, drawn.Size())
	if sampleReportOut != "" {
		fmt.Fprintf(os.Stderr, "Sample report: %s\n", sampleReportOut)
	}
	return nil
}
