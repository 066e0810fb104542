package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/report"
)

var cleanOut string

var cleanCmd = &cobra.Command{
	Use:   "clean <reports.csv>",
	Short: "Cleanse raw reports before extraction",
	Long: `Clean loads raw intelligence reports and removes records unusable for
quality assurance: missing identifiers, bodies too short to judge, and
sources graded F. Bodies that arrive with HTML markup are reduced to
their visible text.

Every removal is counted and reported; nothing is dropped silently.

Example:
  matzpen clean raw_reports.csv --out cleaned_reports.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanOut, "out", "cleaned_reports.csv", "output CSV path")
}

func runClean(cmd *cobra.Command, args []string) error {
	reports, err := ingest.ReadReports(args[0])
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}

	cleaned, stats := ingest.Clean(reports)
	if err := ingest.WriteReports(cleanOut, cleaned); err != nil {
		return fmt.Errorf("writing cleaned reports: %w", err)
	}

	report.Clean(os.Stdout, stats)
	fmt.Fprintf(os.Stderr, "\nWrote %d records: %s\n", len(cleaned), cleanOut)
	return nil
}
