package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/model"
	"github.com/matzpen-project/matzpen/internal/pipeline"
	"github.com/matzpen-project/matzpen/internal/report"
)

var (
	extractOut     string
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract <cleaned.csv>",
	Short: "Extract coordinates and score edge cases",
	Long: `Extract runs every report through the Hebrew-anchor pattern cascade,
scores each record for edge-case difficulty, and writes the scored
records for the sampling stage. The quality report shows extraction
rates overall, per pattern, and per sector and urgency.

Example:
  matzpen extract cleaned_reports.csv --out scored_reports.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractOut, "out", "scored_reports.csv", "output CSV path")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "parallel workers for the per-record pass (0 = config)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if extractWorkers > 0 {
		cfg.Extraction.Workers = extractWorkers
	}

	reports, err := ingest.ReadReports(args[0])
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	scored, err := p.Process(context.Background(), reports)
	if err != nil {
		return fmt.Errorf("extraction pass: %w", err)
	}

	if err := ingest.WriteScored(extractOut, scored); err != nil {
		return fmt.Errorf("writing scored reports: %w", err)
	}

	results := make([]model.ExtractionResult, len(scored))
	for i, rec := range scored {
		results[i] = rec.Extraction
	}
	stats := extract.ComputeStats(results)
	bySector := extract.RateBy(scored, func(r model.Report) string { return r.Sector })
	byUrgency := extract.RateBy(scored, func(r model.Report) string { return r.Urgency })
	report.Extraction(os.Stdout, stats, bySector, byUrgency)

	fmt.Fprintf(os.Stderr, "\nWrote %d records: %s\n", len(scored), extractOut)
	return nil
}
