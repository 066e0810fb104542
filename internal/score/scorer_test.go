package score

import (
	"strings"
	"testing"

	"github.com/matzpen-project/matzpen/internal/model"
)

func positive(coord string) model.ExtractionResult {
	return model.ExtractionResult{HasCoordinate: true, Coordinate: coord, PatternID: "pattern_1"}
}

func TestScorer_Heuristics(t *testing.T) {
	scorer := NewScorer()

	// Long filler without digits or anchor substrings.
	long := strings.Repeat("דיווח שגרתי מהשטח ללא ממצאים ", 10)

	tests := []struct {
		name  string
		rep   model.Report
		res   model.ExtractionResult
		score int
		tags  []string
	}{
		{
			name: "calm midlength report",
			rep:  model.Report{ID: "1", Body: "בסיור הבוקר לא אותרה פעילות חריגה בגזרה כולה", Reliability: "B2"},
			res:  model.ExtractionResult{},
		},
		{
			// 9 runes; coordinate missing means no positional tags.
			name:  "very short text",
			rep:   model.Report{ID: "2", Body: "אין דיווח", Reliability: "A1"},
			res:   model.ExtractionResult{},
			score: 3,
			tags:  []string{TagVeryShortText},
		},
		{
			name:  "very long text",
			rep:   model.Report{ID: "3", Body: long, Reliability: "B2"},
			res:   model.ExtractionResult{},
			score: 2,
			tags:  []string{TagVeryLongText},
		},
		{
			name:  "near miss run",
			rep:   model.Report{ID: "4", Body: "בדיווח הופיע המספר 12345 ללא הקשר ברור למיקום כלשהו", Reliability: "B2"},
			res:   model.ExtractionResult{},
			score: 4,
			tags:  []string{TagNearSixDigit},
		},
		{
			name:  "missed potential coordinate",
			rep:   model.Report{ID: "5", Body: "הכוח דיווח על הנקודה 123456 אך ללא מילת עוגן מוכרת כלל", Reliability: "B2"},
			res:   model.ExtractionResult{},
			score: 6,
			tags:  []string{TagMissedPotential},
		},
		{
			name:  "low reliability",
			rep:   model.Report{ID: "6", Body: "מקור חדש מסר דיווח כללי על תנועות בגזרה המרכזית", Reliability: "D4"},
			res:   model.ExtractionResult{},
			score: 2,
			tags:  []string{TagLowReliability},
		},
		{
			name:  "non standard anchor",
			rep:   model.Report{ID: "7", Body: "התקבל דיווח עם נצ ללא נקודות מהתצפית בגזרה הדרומית", Reliability: "B2"},
			res:   model.ExtractionResult{},
			score: 3,
			tags:  []string{TagNonStandardAnchor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge := scorer.Score(tt.rep, tt.res)
			if edge.Score != tt.score {
				t.Errorf("score = %d, want %d (reasons: %v)", edge.Score, tt.score, edge.Reasons)
			}
			if len(edge.Reasons) != len(tt.tags) {
				t.Fatalf("reasons = %v, want %v", edge.Reasons, tt.tags)
			}
			for i, tag := range tt.tags {
				if edge.Reasons[i] != tag {
					t.Errorf("reason %d = %q, want %q", i, edge.Reasons[i], tag)
				}
			}
		})
	}
}

func TestScorer_Additive(t *testing.T) {
	scorer := NewScorer()

	// Short body, two 6-digit runs, extraction positive and the token
	// sits at the start: very_short_text(3) + multiple_6_digits(5) +
	// multiple_candidates(4) + coord_at_edge(2) = 14.
	rep := model.Report{ID: "8", Body: "נ.צ 111111 או 222222", Reliability: "B2"}
	edge := scorer.Score(rep, positive("111111"))

	if edge.Score != 14 {
		t.Errorf("score = %d, want 14 (reasons: %v)", edge.Score, edge.Reasons)
	}
	for _, tag := range []string{TagVeryShortText, TagMultipleSixDigits, TagMultipleCands, TagCoordAtEdge} {
		if !edge.Has(tag) {
			t.Errorf("missing tag %q in %v", tag, edge.Reasons)
		}
	}
	if edge.Has(TagMissedPotential) {
		t.Errorf("missed_potential_coord must not fire on a positive extraction")
	}
}

func TestScorer_CoordAtEdge(t *testing.T) {
	scorer := NewScorer()
	pad := strings.Repeat("א", 40)

	// Token buried in the middle of a long-enough body: no edge tag.
	rep := model.Report{ID: "9", Body: pad + " נ.צ 123456 " + pad, Reliability: "B2"}
	if edge := scorer.Score(rep, positive("123456")); edge.Has(TagCoordAtEdge) {
		t.Errorf("unexpected coord_at_edge: %v", edge.Reasons)
	}

	// Token within the trailing window.
	rep = model.Report{ID: "10", Body: pad + " מיקום 123456", Reliability: "B2"}
	if edge := scorer.Score(rep, positive("123456")); !edge.Has(TagCoordAtEdge) {
		t.Errorf("expected coord_at_edge: %v", edge.Reasons)
	}
}

func TestScorer_ManyNumbers(t *testing.T) {
	scorer := NewScorer()
	rep := model.Report{
		ID:          "11",
		Body:        "בשעה 0630 נראו 12 כלי רכב, 3 משאיות, 8 אופנועים ועוד 44 חיילים בגזרה",
		Reliability: "B2",
	}
	edge := scorer.Score(rep, model.ExtractionResult{})
	if !edge.Has(TagManyNumbers) {
		t.Errorf("expected many_numbers for 5 runs: %v", edge.Reasons)
	}
	if edge.Score != 3 {
		t.Errorf("score = %d, want 3 (reasons: %v)", edge.Score, edge.Reasons)
	}
}

func TestNewScorerWithWeights(t *testing.T) {
	scorer := NewScorerWithWeights(map[string]int{
		TagVeryShortText: 10,
		TagNearSixDigit:  0, // disabled
	})

	rep := model.Report{ID: "12", Body: "מספר 12345 קצר", Reliability: "B2"}
	edge := scorer.Score(rep, model.ExtractionResult{})
	if edge.Has(TagNearSixDigit) {
		t.Errorf("disabled heuristic still fired: %v", edge.Reasons)
	}
	if edge.Score != 10 {
		t.Errorf("score = %d, want 10 with overridden weight", edge.Score)
	}

	tags := scorer.Tags()
	for _, tag := range tags {
		if tag == TagNearSixDigit {
			t.Error("disabled heuristic still listed in Tags()")
		}
	}
	if len(tags) != 9 {
		t.Errorf("len(Tags()) = %d, want 9", len(tags))
	}
}
