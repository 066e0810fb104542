// Package eval compares extractor decisions against human-tagged
// ground truth and derives the confusion matrix, classification
// metrics, and error breakdowns. Everything here is a pure read
// computation; nothing persists between calls.
package eval

import (
	"sort"
	"strings"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Normalize maps a raw decision label to the two-valued domain.
// Surrounding whitespace and case are ignored; anything else is
// invalid.
func Normalize(raw string) (model.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return model.DecisionYes, true
	case "no":
		return model.DecisionNo, true
	}
	return "", false
}

// Valid splits records into those with two-valued model and tagger
// decisions and a count of the rest. Invalid records are excluded from
// every downstream computation but always surfaced by count.
func Valid(records []model.LabeledRecord) (valid []model.LabeledRecord, invalid int) {
	for _, rec := range records {
		_, okModel := Normalize(rec.ModelSays)
		_, okTag := Normalize(rec.TaggerSays)
		if okModel && okTag {
			valid = append(valid, rec)
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// Matrix computes the four-way confusion counts over records assumed
// valid.
func Matrix(records []model.LabeledRecord) model.ConfusionMatrix {
	var m model.ConfusionMatrix
	for _, rec := range records {
		modelYes := decisionIs(rec.ModelSays, model.DecisionYes)
		tagYes := decisionIs(rec.TaggerSays, model.DecisionYes)
		switch {
		case modelYes && tagYes:
			m.TP++
		case modelYes && !tagYes:
			m.FP++
		case !modelYes && !tagYes:
			m.TN++
		default:
			m.FN++
		}
	}
	return m
}

// ComputeMetrics derives the standard ratios from a matrix. Each ratio
// resolves to 0 on a zero denominator: "no applicable cases" is not a
// failure.
func ComputeMetrics(m model.ConfusionMatrix) model.Metrics {
	metrics := model.Metrics{
		Precision:   ratio(m.TP, m.TP+m.FP),
		Recall:      ratio(m.TP, m.TP+m.FN),
		Accuracy:    ratio(m.TP+m.TN, m.Total()),
		Specificity: ratio(m.TN, m.TN+m.FP),
	}
	if sum := metrics.Precision + metrics.Recall; sum > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / sum
	}
	return metrics
}

// Evaluate runs the full evaluation: filter to valid records, compute
// the matrix and metrics, and collect the misclassified records for
// error analysis.
func Evaluate(records []model.LabeledRecord) model.Evaluation {
	valid, invalid := Valid(records)
	m := Matrix(valid)
	ev := model.Evaluation{
		Matrix:         m,
		Metrics:        ComputeMetrics(m),
		ValidRecords:   len(valid),
		InvalidRecords: invalid,
	}
	for _, rec := range valid {
		modelYes := decisionIs(rec.ModelSays, model.DecisionYes)
		tagYes := decisionIs(rec.TaggerSays, model.DecisionYes)
		switch {
		case modelYes && !tagYes:
			ev.FalsePositives = append(ev.FalsePositives, rec)
		case !modelYes && tagYes:
			ev.FalseNegatives = append(ev.FalseNegatives, rec)
		}
	}
	return ev
}

// Attribute names a categorical field used for segmentation.
type Attribute struct {
	Name string
	Of   func(model.LabeledRecord) string
}

var (
	BySector      = Attribute{Name: "sector", Of: func(r model.LabeledRecord) string { return r.Sector }}
	ByUrgency     = Attribute{Name: "urgency", Of: func(r model.LabeledRecord) string { return r.Urgency }}
	ByReliability = Attribute{Name: "reliability", Of: func(r model.LabeledRecord) string { return r.Reliability }}
)

// SegmentBy recomputes the confusion counts restricted to each value
// of an attribute over records assumed valid, ranked by descending
// error count so the worst segment comes first.
func SegmentBy(records []model.LabeledRecord, attr Attribute) []model.SegmentStats {
	groups := make(map[string][]model.LabeledRecord)
	var order []string
	for _, rec := range records {
		v := attr.Of(rec)
		if _, ok := groups[v]; !ok {
			order = append(order, v)
		}
		groups[v] = append(groups[v], rec)
	}
	sort.Strings(order)

	out := make([]model.SegmentStats, 0, len(order))
	for _, v := range order {
		m := Matrix(groups[v])
		out = append(out, model.SegmentStats{
			Attribute: attr.Name,
			Value:     v,
			Matrix:    m,
			Accuracy:  m.Accuracy(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Matrix.Errors() > out[j].Matrix.Errors()
	})
	return out
}

// Cross isolates the worst segment along the primary attribute and
// reports its error composition by the secondary attribute. An empty
// WorstSegment means there were no errors to analyze.
func Cross(records []model.LabeledRecord, primary, secondary Attribute) model.CrossStats {
	stats := model.CrossStats{
		PrimaryAttribute:   primary.Name,
		SecondaryAttribute: secondary.Name,
	}

	segments := SegmentBy(records, primary)
	if len(segments) == 0 || segments[0].Matrix.Errors() == 0 {
		return stats
	}
	worst := segments[0]
	stats.WorstSegment = worst.Value
	stats.WorstSegmentErrors = worst.Matrix.Errors()

	var inWorst []model.LabeledRecord
	for _, rec := range records {
		if primary.Of(rec) == worst.Value {
			inWorst = append(inWorst, rec)
		}
	}

	groups := make(map[string]*model.CrossBreakdown)
	var order []string
	for _, rec := range inWorst {
		v := secondary.Of(rec)
		b, ok := groups[v]
		if !ok {
			b = &model.CrossBreakdown{Value: v}
			groups[v] = b
			order = append(order, v)
		}
		b.Records++
		modelYes := decisionIs(rec.ModelSays, model.DecisionYes)
		tagYes := decisionIs(rec.TaggerSays, model.DecisionYes)
		switch {
		case modelYes && !tagYes:
			b.FP++
			b.Errors++
		case !modelYes && tagYes:
			b.FN++
			b.Errors++
		}
	}
	sort.Strings(order)
	for _, v := range order {
		stats.Breakdown = append(stats.Breakdown, *groups[v])
	}
	return stats
}

// ErrorType distinguishes the two misclassification directions.
type ErrorType string

const (
	FalsePositive ErrorType = "FP"
	FalseNegative ErrorType = "FN"
)

// ErrorRecord is a misclassified record annotated with its direction,
// for focused manual inspection.
type ErrorRecord struct {
	Type   ErrorType
	Record model.LabeledRecord
}

// ErrorTable collects every misclassified record among valid ones,
// sorted by reliability grade then sector so related failures group
// together in the export.
func ErrorTable(records []model.LabeledRecord) []ErrorRecord {
	valid, _ := Valid(records)
	var out []ErrorRecord
	for _, rec := range valid {
		modelYes := decisionIs(rec.ModelSays, model.DecisionYes)
		tagYes := decisionIs(rec.TaggerSays, model.DecisionYes)
		switch {
		case modelYes && !tagYes:
			out = append(out, ErrorRecord{Type: FalsePositive, Record: rec})
		case !modelYes && tagYes:
			out = append(out, ErrorRecord{Type: FalseNegative, Record: rec})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Record, out[j].Record
		if a.Reliability != b.Reliability {
			return a.Reliability < b.Reliability
		}
		return a.Sector < b.Sector
	})
	return out
}

func decisionIs(raw string, want model.Decision) bool {
	d, ok := Normalize(raw)
	return ok && d == want
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
