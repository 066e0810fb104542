package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/report"
)

var anchorsContexts bool

var anchorsCmd = &cobra.Command{
	Use:   "anchors <reports.csv>",
	Short: "Audit anchor-word usage across a corpus",
	Long: `Anchors scans the corpus for coordinate-sized digit runs and reports
what precedes them: known anchor phrases and the most common preceding
tokens. Use it to check whether the pattern cascade covers the anchor
conventions this corpus actually uses.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchors,
}

func init() {
	rootCmd.AddCommand(anchorsCmd)
	anchorsCmd.Flags().BoolVar(&anchorsContexts, "contexts", false, "print the raw text preceding each candidate run")
}

func runAnchors(cmd *cobra.Command, args []string) error {
	reports, err := ingest.ReadReports(args[0])
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}

	scan := extract.ScanAnchors(reports)
	report.Anchors(os.Stdout, scan)

	if anchorsContexts {
		for _, ctx := range scan.Contexts {
			fmt.Printf("...%s\n", ctx)
		}
	}
	return nil
}
