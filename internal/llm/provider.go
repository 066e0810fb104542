// Package llm generates optional natural-language observations about
// an evaluation run. Observations are commentary on numbers already
// computed elsewhere; they never feed back into the metrics.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Provider is an LLM backend capable of producing observations.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Observe generates observations for an evaluation.
	Observe(ctx context.Context, req ObservationRequest) (*ObservationResponse, error)
}

// ObservationRequest carries the evaluation material the prompt is
// built from. Only aggregates cross this boundary; report bodies are
// never sent to the provider.
type ObservationRequest struct {
	Evaluation model.Evaluation
	Cross      *model.CrossStats

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	Model     string
	MaxTokens int
}

// ObservationResponse is the generated commentary.
type ObservationResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// BuildPrompt renders the default observation prompt from the computed
// metrics. The instructions pin the model to the supplied numbers so
// the output cannot smuggle in new "facts".
func BuildPrompt(ev model.Evaluation, cross *model.CrossStats) string {
	var b strings.Builder
	b.WriteString(`You are reviewing the quality-assurance results of an automated
coordinate-extraction model. Base every statement ONLY on the numbers
below. Do not invent records, causes, or data that is not shown.

`)
	m := ev.Matrix
	fmt.Fprintf(&b, "Valid records: %d (invalid excluded: %d)\n", ev.ValidRecords, ev.InvalidRecords)
	fmt.Fprintf(&b, "Confusion matrix: TP=%d FP=%d TN=%d FN=%d\n", m.TP, m.FP, m.TN, m.FN)

	metrics := ev.Metrics.AsMap()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %.4f\n", name, metrics[name])
	}

	if len(ev.Segments) > 0 {
		b.WriteString("\nSegments (sorted by errors, descending):\n")
		for i, seg := range ev.Segments {
			if i >= 10 {
				fmt.Fprintf(&b, "... and %d more segments\n", len(ev.Segments)-10)
				break
			}
			fmt.Fprintf(&b, "- %s=%s: TP=%d FP=%d TN=%d FN=%d accuracy=%.4f\n",
				seg.Attribute, seg.Value, seg.Matrix.TP, seg.Matrix.FP,
				seg.Matrix.TN, seg.Matrix.FN, seg.Accuracy)
		}
	}

	if cross != nil && cross.WorstSegment != "" {
		fmt.Fprintf(&b, "\nWorst %s: %s (%d errors), error composition by %s:\n",
			cross.PrimaryAttribute, cross.WorstSegment, cross.WorstSegmentErrors,
			cross.SecondaryAttribute)
		for _, bd := range cross.Breakdown {
			fmt.Fprintf(&b, "- %s: %d errors (%d FP, %d FN) of %d records\n",
				bd.Value, bd.Errors, bd.FP, bd.FN, bd.Records)
		}
	}

	b.WriteString(`
Write 3-5 short observations: where the model is weakest, whether
errors lean toward false positives or false negatives, and which
segment deserves attention first. Plain prose, no headings.`)
	return b.String()
}
