// Package report renders the plain-text reports of the pipeline
// stages: cleansing summary, extraction quality, anchor scan, sample
// composition with tagger instructions, and performance evaluation.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/ingest"
	"github.com/matzpen-project/matzpen/internal/model"
	"github.com/matzpen-project/matzpen/internal/store"
)

const lineWidth = 78

func heavyRule(w io.Writer)  { fmt.Fprintln(w, strings.Repeat("=", lineWidth)) }
func lightRule(w io.Writer)  { fmt.Fprintln(w, strings.Repeat("-", lineWidth)) }
func pct(v float64) string   { return fmt.Sprintf("%.1f%%", v*100) }
func section(w io.Writer, title string) {
	lightRule(w)
	fmt.Fprintln(w, title)
	lightRule(w)
}

// Header prints the banner used at the top of every stage report.
func Header(w io.Writer, title string) {
	heavyRule(w)
	fmt.Fprintln(w, title)
	heavyRule(w)
	fmt.Fprintln(w)
}

// Clean renders the cleansing summary.
func Clean(w io.Writer, stats ingest.CleanStats) {
	Header(w, "DATA CLEANSING REPORT")
	fmt.Fprintf(w, "Initial records:        %d\n", stats.Initial)
	fmt.Fprintf(w, "Removed (no ID):        %d\n", stats.RemovedNoID)
	fmt.Fprintf(w, "Removed (short body):   %d\n", stats.RemovedShortBody)
	fmt.Fprintf(w, "Removed (unreliable):   %d\n", stats.RemovedUnreliable)
	fmt.Fprintf(w, "Markup stripped:        %d\n", stats.StrippedMarkup)
	fmt.Fprintf(w, "Final records:          %d (%s retained)\n", stats.Final, pct(stats.Retention()))
}

// Extraction renders the extraction quality report: totals, per-pattern
// counts, and extraction rate by sector and urgency.
func Extraction(w io.Writer, stats extract.Stats, bySector, byUrgency []extract.AttributeRate) {
	Header(w, "COORDINATE EXTRACTION REPORT")
	fmt.Fprintf(w, "Total reports:           %d\n", stats.Total)
	fmt.Fprintf(w, "With coordinate:         %d (%s)\n", stats.WithCoordinate, pct(stats.Rate))
	fmt.Fprintf(w, "Without coordinate:      %d\n", stats.Without())
	fmt.Fprintln(w)

	if len(stats.PatternsInOrder) > 0 {
		section(w, "MATCHES BY PATTERN")
		for _, id := range stats.PatternsInOrder {
			fmt.Fprintf(w, "%-24s %d\n", id, stats.PerPattern[id])
		}
		fmt.Fprintln(w)
	}

	writeRates(w, "EXTRACTION RATE BY SECTOR", bySector)
	writeRates(w, "EXTRACTION RATE BY URGENCY", byUrgency)
}

func writeRates(w io.Writer, title string, rates []extract.AttributeRate) {
	if len(rates) == 0 {
		return
	}
	section(w, title)
	for _, r := range rates {
		fmt.Fprintf(w, "%-24s %4d/%-4d (%s)\n", r.Value, r.WithCoordinate, r.Total, pct(r.Rate))
	}
	fmt.Fprintln(w)
}

// Anchors renders the anchor-word scan used to audit the cascade
// against a corpus.
func Anchors(w io.Writer, scan extract.AnchorScan) {
	Header(w, "ANCHOR WORD SCAN")
	fmt.Fprintf(w, "Reports scanned:         %d\n", scan.Reports)
	fmt.Fprintf(w, "Candidate digit runs:    %d\n", scan.CandidateRuns)
	fmt.Fprintln(w)

	if len(scan.AnchorCounts) > 0 {
		section(w, "KNOWN ANCHOR PHRASES (reports containing)")
		for _, wc := range scan.AnchorCounts {
			fmt.Fprintf(w, "%-24s %d\n", wc.Word, wc.Count)
		}
		fmt.Fprintln(w)
	}

	if len(scan.PrecedingWords) > 0 {
		section(w, "MOST COMMON TOKENS BEFORE A RUN")
		top := scan.PrecedingWords
		if len(top) > 15 {
			top = top[:15]
		}
		for _, wc := range top {
			fmt.Fprintf(w, "%-24s %d\n", wc.Word, wc.Count)
		}
		fmt.Fprintln(w)
	}
}

// SampleComposition renders the tagging sample report: category split,
// breakdowns, edge analysis, leading examples, and the instructions
// that travel with the tagging file.
func SampleComposition(w io.Writer, sample model.Sample, records map[string]model.ScoredReport) {
	Header(w, "TAGGING SAMPLE GENERATION REPORT")
	fmt.Fprintf(w, "Total sample size: %d reports\n", sample.Size())
	if sample.TotalShortfall() > 0 {
		for _, cat := range []model.Category{model.CategoryPositive, model.CategoryNegative, model.CategoryEdge} {
			if n := sample.Shortfall[cat]; n > 0 {
				fmt.Fprintf(w, "Shortfall (%s): %d slots unfilled\n", cat, n)
			}
		}
	}
	fmt.Fprintln(w)

	withCoord, withoutCoord := 0, 0
	perCategory := make(map[model.Category]int)
	for _, e := range sample.Entries {
		perCategory[e.Category]++
		if rec, ok := records[e.ReportID]; ok && rec.Extraction.HasCoordinate {
			withCoord++
		} else {
			withoutCoord++
		}
	}

	section(w, "SAMPLE COMPOSITION")
	fmt.Fprintf(w, "Reports WITH coordinates:    %d\n", withCoord)
	fmt.Fprintf(w, "Reports WITHOUT coordinates: %d\n", withoutCoord)
	for _, cat := range []model.Category{model.CategoryPositive, model.CategoryNegative, model.CategoryEdge} {
		fmt.Fprintf(w, "Category %-10s          %d\n", cat+":", perCategory[cat])
	}
	fmt.Fprintln(w)

	writeGroupCounts(w, "BREAKDOWN BY SECTOR", sample, records, func(r model.Report) string { return r.Sector })
	writeGroupCounts(w, "BREAKDOWN BY URGENCY", sample, records, func(r model.Report) string { return r.Urgency })
	writePatternCounts(w, sample, records)
	writeEdgeAnalysis(w, sample, records)
	writeExamples(w, sample, records)
	writeInstructions(w)
}

func writeGroupCounts(w io.Writer, title string, sample model.Sample, records map[string]model.ScoredReport, attr func(model.Report) string) {
	counts := make(map[string]int)
	withCoords := make(map[string]int)
	var order []string
	for _, e := range sample.Entries {
		rec, ok := records[e.ReportID]
		if !ok {
			continue
		}
		v := attr(rec.Report)
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
		if rec.Extraction.HasCoordinate {
			withCoords[v]++
		}
	}
	if len(order) == 0 {
		return
	}
	sort.Strings(order)
	section(w, title)
	for _, v := range order {
		fmt.Fprintf(w, "%-24s %d reports (%d with coords)\n", v, counts[v], withCoords[v])
	}
	fmt.Fprintln(w)
}

func writePatternCounts(w io.Writer, sample model.Sample, records map[string]model.ScoredReport) {
	counts := make(map[string]int)
	for _, e := range sample.Entries {
		rec, ok := records[e.ReportID]
		if !ok || !rec.Extraction.HasCoordinate {
			continue
		}
		counts[rec.Extraction.PatternID]++
	}
	if len(counts) == 0 {
		return
	}
	var ids []string
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	section(w, "BREAKDOWN BY EXTRACTION PATTERN (positive cases)")
	for _, id := range ids {
		fmt.Fprintf(w, "%-24s %d matches\n", id, counts[id])
	}
	fmt.Fprintln(w)
}

func writeEdgeAnalysis(w io.Writer, sample model.Sample, records map[string]model.ScoredReport) {
	var sum, count, minScore, maxScore int
	first := true
	reasonCounts := make(map[string]int)
	for _, e := range sample.Entries {
		rec, ok := records[e.ReportID]
		if !ok {
			continue
		}
		score := rec.Edge.Score
		sum += score
		count++
		if first || score < minScore {
			minScore = score
		}
		if first || score > maxScore {
			maxScore = score
		}
		first = false
		for _, reason := range rec.Edge.Reasons {
			reasonCounts[reason]++
		}
	}
	if count == 0 {
		return
	}
	section(w, "EDGE CASE ANALYSIS")
	fmt.Fprintf(w, "Average edge score: %.2f\n", float64(sum)/float64(count))
	fmt.Fprintf(w, "Max edge score:     %d\n", maxScore)
	fmt.Fprintf(w, "Min edge score:     %d\n", minScore)
	if len(reasonCounts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top edge case reasons:")
		var reasons []string
		for r := range reasonCounts {
			reasons = append(reasons, r)
		}
		sort.Slice(reasons, func(i, j int) bool {
			if reasonCounts[reasons[i]] != reasonCounts[reasons[j]] {
				return reasonCounts[reasons[i]] > reasonCounts[reasons[j]]
			}
			return reasons[i] < reasons[j]
		})
		if len(reasons) > 10 {
			reasons = reasons[:10]
		}
		for _, r := range reasons {
			fmt.Fprintf(w, "  - %s: %d occurrences\n", r, reasonCounts[r])
		}
	}
	fmt.Fprintln(w)
}

func writeExamples(w io.Writer, sample model.Sample, records map[string]model.ScoredReport) {
	entries := sample.Entries
	if len(entries) > 10 {
		entries = entries[:10]
	}
	if len(entries) == 0 {
		return
	}
	section(w, "SAMPLE EXAMPLES (first 10)")
	for _, e := range entries {
		rec, ok := records[e.ReportID]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\nReport ID: %s\n", rec.Report.ID)
		if rec.Extraction.HasCoordinate {
			fmt.Fprintf(w, "Has Coordinate: Yes (%s)\n", rec.Extraction.Coordinate)
		} else {
			fmt.Fprintln(w, "Has Coordinate: No")
		}
		fmt.Fprintf(w, "Edge Score: %d\n", rec.Edge.Score)
		if len(rec.Edge.Reasons) > 0 {
			fmt.Fprintf(w, "Edge Reasons: %s\n", strings.Join(rec.Edge.Reasons, ", "))
		}
		fmt.Fprintf(w, "Content: %s\n", truncate(rec.Report.Body, 100))
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
	fmt.Fprintln(w)
}

func writeInstructions(w io.Writer) {
	heavyRule(w)
	fmt.Fprintln(w, "INSTRUCTIONS FOR TAGGERS")
	heavyRule(w)
	fmt.Fprint(w, `
Column descriptions:
- Extracted_Coordinate: what the model extracted (string, leading zeros kept)
- Y_N_MODEL: the model's decision (Yes/No)
- Y_N_TAG: [FILL THIS] your validation (Yes/No)
- Tagged_Coordinate: [FILL THIS] the correct coordinate if one exists
- Is_Edge_Case: Yes when the case is known to be challenging

Tagging instructions:
1. Review each report's Content_Body carefully.
2. Pay extra attention to reports where Is_Edge_Case = Yes.
3. Fill in Y_N_TAG: Yes when there IS a valid coordinate, No otherwise.
4. If Y_N_TAG = Yes, write the 6-digit coordinate in Tagged_Coordinate.
5. Leave Tagged_Coordinate empty when Y_N_TAG = No.

A valid coordinate is exactly 6 digits, associated with a location
anchor (for example: נ.צ, מיקום, נקודת ציון), and represents an actual
geographic position. Write it as a string and preserve leading zeros.
`)
}

// Evaluation renders the performance evaluation report: confusion
// matrix, metrics, segment breakdowns, cross analysis, error examples,
// and optional LLM observations (appended verbatim, never part of the
// computed numbers).
func Evaluation(w io.Writer, ev model.Evaluation, cross *model.CrossStats, observations string) {
	Header(w, "PERFORMANCE EVALUATION REPORT")
	fmt.Fprintf(w, "Valid records:   %d\n", ev.ValidRecords)
	if ev.InvalidRecords > 0 {
		fmt.Fprintf(w, "Invalid records: %d (excluded from all counts)\n", ev.InvalidRecords)
	}
	fmt.Fprintln(w)

	m := ev.Matrix
	section(w, "CONFUSION MATRIX")
	fmt.Fprintln(w, "                        Actual (human tag)")
	fmt.Fprintln(w, "                        Positive    Negative")
	fmt.Fprintf(w, "Predicted   Positive    %4d        %4d\n", m.TP, m.FP)
	fmt.Fprintf(w, "(model)     Negative    %4d        %4d\n", m.FN, m.TN)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "TP %4d  model correctly identified coordinates\n", m.TP)
	fmt.Fprintf(w, "FP %4d  model extracted non-coordinates\n", m.FP)
	fmt.Fprintf(w, "TN %4d  model correctly identified no coordinates\n", m.TN)
	fmt.Fprintf(w, "FN %4d  model missed actual coordinates\n", m.FN)
	fmt.Fprintln(w)

	section(w, "PERFORMANCE METRICS")
	fmt.Fprintf(w, "Precision:    %s  (%d correct of %d positive predictions)\n", pct(ev.Metrics.Precision), m.TP, m.TP+m.FP)
	fmt.Fprintf(w, "Recall:       %s  (%d caught of %d actual positives)\n", pct(ev.Metrics.Recall), m.TP, m.TP+m.FN)
	fmt.Fprintf(w, "F1 score:     %s\n", pct(ev.Metrics.F1))
	fmt.Fprintf(w, "Accuracy:     %s  (%d correct of %d total)\n", pct(ev.Metrics.Accuracy), m.TP+m.TN, m.Total())
	fmt.Fprintf(w, "Specificity:  %s  (%d correct of %d actual negatives)\n", pct(ev.Metrics.Specificity), m.TN, m.TN+m.FP)
	fmt.Fprintln(w)

	writeSegments(w, ev.Segments)
	writeCross(w, cross)
	writeErrorExamples(w, "FALSE POSITIVE EXAMPLES", ev.FalsePositives)
	writeErrorExamples(w, "FALSE NEGATIVE EXAMPLES", ev.FalseNegatives)

	if observations != "" {
		heavyRule(w)
		fmt.Fprintln(w, "OBSERVATIONS (LLM-generated, advisory only)")
		heavyRule(w)
		fmt.Fprintln(w, observations)
	}
}

func writeSegments(w io.Writer, segments []model.SegmentStats) {
	if len(segments) == 0 {
		return
	}
	byAttr := make(map[string][]model.SegmentStats)
	var attrs []string
	for _, seg := range segments {
		if len(byAttr[seg.Attribute]) == 0 {
			attrs = append(attrs, seg.Attribute)
		}
		byAttr[seg.Attribute] = append(byAttr[seg.Attribute], seg)
	}
	for _, attr := range attrs {
		section(w, "ERROR ANALYSIS BY "+strings.ToUpper(attr))
		fmt.Fprintf(w, "%-24s %6s %5s %5s %5s %5s %9s\n", attr, "Total", "TP", "FP", "TN", "FN", "Accuracy")
		for _, seg := range byAttr[attr] {
			m := seg.Matrix
			fmt.Fprintf(w, "%-24s %6d %5d %5d %5d %5d %9s\n",
				seg.Value, m.Total(), m.TP, m.FP, m.TN, m.FN, pct(seg.Accuracy))
		}
		fmt.Fprintln(w)
	}
}

func writeCross(w io.Writer, cross *model.CrossStats) {
	if cross == nil || cross.WorstSegment == "" {
		return
	}
	section(w, "CROSS ANALYSIS")
	fmt.Fprintf(w, "Worst %s: %s (%d errors)\n", cross.PrimaryAttribute, cross.WorstSegment, cross.WorstSegmentErrors)
	fmt.Fprintf(w, "Error composition by %s:\n", cross.SecondaryAttribute)
	for _, b := range cross.Breakdown {
		fmt.Fprintf(w, "  %-20s %d errors (%d FP, %d FN) of %d records\n",
			b.Value, b.Errors, b.FP, b.FN, b.Records)
	}
	fmt.Fprintln(w)
}

func writeErrorExamples(w io.Writer, title string, records []model.LabeledRecord) {
	if len(records) == 0 {
		return
	}
	if len(records) > 5 {
		records = records[:5]
	}
	section(w, title)
	for _, rec := range records {
		fmt.Fprintf(w, "\nReport ID: %s\n", rec.ReportID)
		if rec.Extracted != "" {
			fmt.Fprintf(w, "Extracted: %s\n", rec.Extracted)
		}
		if rec.TaggedCoord != "" {
			fmt.Fprintf(w, "Tagged:    %s\n", rec.TaggedCoord)
		}
		if rec.Body != "" {
			fmt.Fprintf(w, "Content:   %s\n", truncate(rec.Body, 100))
		}
	}
	fmt.Fprintln(w)
}

// History renders stored evaluation runs, newest first.
func History(w io.Writer, runs []store.RunSummary) {
	Header(w, "EVALUATION RUN HISTORY")
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}
	fmt.Fprintf(w, "%-5s %-20s %-24s %8s %9s %8s\n", "ID", "Date", "Source", "Records", "Accuracy", "F1")
	lightRule(w)
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d %-20s %-24s %8d %9s %8s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), truncate(r.Source, 24),
			r.ValidRecords, pct(r.Metrics.Accuracy), pct(r.Metrics.F1))
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
