package eval

import (
	"testing"

	"github.com/matzpen-project/matzpen/internal/model"
)

func labeled(id, modelSays, tagSays, sector, reliability string) model.LabeledRecord {
	return model.LabeledRecord{
		ReportID:    id,
		ModelSays:   modelSays,
		TaggerSays:  tagSays,
		Sector:      sector,
		Urgency:     "routine",
		Reliability: reliability,
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Decision
		ok   bool
	}{
		{"yes", model.DecisionYes, true},
		{"No", model.DecisionNo, true},
		{"  YES  ", model.DecisionYes, true},
		{"", "", false},
		{"maybe", "", false},
		{"y", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEvaluate_Matrix(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "Yes", "north", "A1"),
		labeled("2", "Yes", "No", "north", "B2"),
		labeled("3", "No", "No", "south", "B2"),
		labeled("4", "No", "Yes", "south", "D4"),
	}

	ev := Evaluate(records)
	want := model.ConfusionMatrix{TP: 1, FP: 1, TN: 1, FN: 1}
	if ev.Matrix != want {
		t.Errorf("matrix = %+v, want %+v", ev.Matrix, want)
	}
	if ev.ValidRecords != 4 || ev.InvalidRecords != 0 {
		t.Errorf("valid/invalid = %d/%d, want 4/0", ev.ValidRecords, ev.InvalidRecords)
	}

	m := ev.Metrics
	for name, got := range map[string]float64{
		"precision":   m.Precision,
		"recall":      m.Recall,
		"f1":          m.F1,
		"accuracy":    m.Accuracy,
		"specificity": m.Specificity,
	} {
		if got != 0.5 {
			t.Errorf("%s = %v, want 0.5", name, got)
		}
	}

	if len(ev.FalsePositives) != 1 || ev.FalsePositives[0].ReportID != "2" {
		t.Errorf("false positives = %+v", ev.FalsePositives)
	}
	if len(ev.FalseNegatives) != 1 || ev.FalseNegatives[0].ReportID != "4" {
		t.Errorf("false negatives = %+v", ev.FalseNegatives)
	}
}

func TestEvaluate_InvalidRecords(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "Yes", "north", "A1"),
		labeled("2", "Yes", "", "north", "B2"),
		labeled("3", "maybe", "No", "south", "B2"),
	}

	ev := Evaluate(records)
	if ev.ValidRecords != 1 || ev.InvalidRecords != 2 {
		t.Errorf("valid/invalid = %d/%d, want 1/2", ev.ValidRecords, ev.InvalidRecords)
	}
	if ev.Matrix.Total() != 1 {
		t.Errorf("matrix total = %d, want 1 (invalid records excluded)", ev.Matrix.Total())
	}
}

func TestComputeMetrics_ZeroDenominators(t *testing.T) {
	// All-negative ground truth and predictions: no positives anywhere.
	m := model.ConfusionMatrix{TN: 5}
	metrics := ComputeMetrics(m)
	if metrics.Precision != 0 || metrics.Recall != 0 || metrics.F1 != 0 {
		t.Errorf("positive-side metrics = %+v, want zeros", metrics)
	}
	if metrics.Accuracy != 1 || metrics.Specificity != 1 {
		t.Errorf("negative-side metrics = %+v, want ones", metrics)
	}

	empty := ComputeMetrics(model.ConfusionMatrix{})
	if empty != (model.Metrics{}) {
		t.Errorf("empty matrix metrics = %+v, want all zeros", empty)
	}
}

func TestSegmentBy(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "Yes", "north", "A1"),
		labeled("2", "No", "No", "north", "A1"),
		labeled("3", "Yes", "No", "south", "B2"),
		labeled("4", "No", "Yes", "south", "B2"),
		labeled("5", "Yes", "Yes", "south", "B2"),
	}

	segments := SegmentBy(records, BySector)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	// south has 2 errors, north has 0; worst first.
	if segments[0].Value != "south" || segments[0].Matrix.Errors() != 2 {
		t.Errorf("segments[0] = %+v, want south with 2 errors", segments[0])
	}
	if segments[1].Value != "north" || segments[1].Accuracy != 1.0 {
		t.Errorf("segments[1] = %+v, want north at accuracy 1.0", segments[1])
	}
	if segments[0].Attribute != "sector" {
		t.Errorf("attribute = %q, want sector", segments[0].Attribute)
	}
}

func TestCross(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "No", "south", "D4"),
		labeled("2", "No", "Yes", "south", "D4"),
		labeled("3", "Yes", "No", "south", "B2"),
		labeled("4", "Yes", "Yes", "north", "A1"),
		labeled("5", "No", "No", "north", "A1"),
	}

	cross := Cross(records, BySector, ByReliability)
	if cross.WorstSegment != "south" || cross.WorstSegmentErrors != 3 {
		t.Errorf("worst = %q (%d errors), want south with 3", cross.WorstSegment, cross.WorstSegmentErrors)
	}
	if cross.PrimaryAttribute != "sector" || cross.SecondaryAttribute != "reliability" {
		t.Errorf("attributes = %q/%q", cross.PrimaryAttribute, cross.SecondaryAttribute)
	}

	byValue := make(map[string]model.CrossBreakdown)
	for _, b := range cross.Breakdown {
		byValue[b.Value] = b
	}
	if b := byValue["D4"]; b.Errors != 2 || b.FP != 1 || b.FN != 1 || b.Records != 2 {
		t.Errorf("D4 breakdown = %+v", b)
	}
	if b := byValue["B2"]; b.Errors != 1 || b.FP != 1 {
		t.Errorf("B2 breakdown = %+v", b)
	}
}

func TestCross_NoErrors(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "Yes", "north", "A1"),
		labeled("2", "No", "No", "south", "B2"),
	}
	cross := Cross(records, BySector, ByReliability)
	if cross.WorstSegment != "" {
		t.Errorf("worst segment = %q, want empty when there are no errors", cross.WorstSegment)
	}
}

func TestErrorTable(t *testing.T) {
	records := []model.LabeledRecord{
		labeled("1", "Yes", "Yes", "north", "A1"),
		labeled("2", "Yes", "No", "south", "B2"),
		labeled("3", "No", "Yes", "north", "A1"),
		labeled("4", "bogus", "Yes", "north", "A1"), // invalid, excluded
	}

	table := ErrorTable(records)
	if len(table) != 2 {
		t.Fatalf("got %d error records, want 2", len(table))
	}
	// Sorted by reliability: A1 before B2.
	if table[0].Record.ReportID != "3" || table[0].Type != FalseNegative {
		t.Errorf("table[0] = %+v", table[0])
	}
	if table[1].Record.ReportID != "2" || table[1].Type != FalsePositive {
		t.Errorf("table[1] = %+v", table[1])
	}
}
