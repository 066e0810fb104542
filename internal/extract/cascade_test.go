package extract

import (
	"testing"

	"github.com/matzpen-project/matzpen/internal/model"
)

func TestExtractor_Cascade(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name    string
		text    string
		coord   string
		pattern string
	}{
		{"dotted anchor", "נצפתה פעילות נ.צ. 123456 בשטח", "123456", "pattern_1"},
		{"dotted anchor no trailing dot", "נ.צ 654321 דווח לפני שעה", "654321", "pattern_1"},
		{"full phrase", "דווח על נקודת ציון: 234567 בגזרה הצפונית", "234567", "pattern_2"},
		{"location anchor", "מיקום 345678 אומת על ידי התצפית", "345678", "pattern_3"},
		{"spaced anchor", "נ צ 456789 ממתין לאימות", "456789", "pattern_4"},
		{"misspelled coordinate anchor", "קוארדינטה 567890 התקבלה", "567890", "pattern_5"},
		{"leading zeros preserved", "נקודת ציון 012345", "012345", "pattern_2"},
		// A 7-digit run still yields its first six digits; the run
		// length is the scorer's concern, not the extractor's.
		{"seven digit run", "מיקום 1234567 ארוך מדי", "123456", "pattern_3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractor.Extract(tt.text)
			if !res.HasCoordinate {
				t.Fatalf("expected a coordinate, got none")
			}
			if res.Coordinate != tt.coord {
				t.Errorf("coordinate: got %q, want %q", res.Coordinate, tt.coord)
			}
			if res.PatternID != tt.pattern {
				t.Errorf("pattern: got %q, want %q", res.PatternID, tt.pattern)
			}
		})
	}
}

func TestExtractor_NoMatch(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"no anchor", "בשעה 063000 נצפתה תנועה של 12 כלי רכב"},
		{"anchor without digits", "נ.צ לא ידוע, ממתינים לעדכון"},
		{"anchor with five digits", "נ.צ 12345 חסר ספרה"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractor.Extract(tt.text)
			if res.HasCoordinate {
				t.Errorf("expected no coordinate, got %q via %s", res.Coordinate, res.PatternID)
			}
			if res.Coordinate != "" || res.PatternID != "" {
				t.Errorf("negative result must be empty, got %+v", res)
			}
		})
	}
}

func TestExtractor_FirstMatchWins(t *testing.T) {
	extractor := NewExtractor()

	// Both pattern_2 and pattern_3 would match; the earlier rule and
	// earlier position must win.
	res := extractor.Extract("מיקום 111111 ואחר כך נקודת ציון 222222")
	if res.PatternID != "pattern_2" {
		t.Errorf("pattern: got %q, want pattern_2 (cascade order, not text order)", res.PatternID)
	}
	if res.Coordinate != "222222" {
		t.Errorf("coordinate: got %q, want 222222", res.Coordinate)
	}
}

func TestNewExtractorFromRules(t *testing.T) {
	custom := []model.RuleConfig{
		{ID: "grid", Regex: `grid\s*(\d{6})`},
	}
	extractor, err := NewExtractorFromRules(custom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := extractor.Extract("target at grid 135790 moving east")
	if !res.HasCoordinate || res.Coordinate != "135790" || res.PatternID != "grid" {
		t.Errorf("custom rule result: %+v", res)
	}

	if _, err := NewExtractorFromRules([]model.RuleConfig{{ID: "bad", Regex: `(`}}); err == nil {
		t.Error("expected error for invalid regex")
	}
	if _, err := NewExtractorFromRules([]model.RuleConfig{{ID: "groups", Regex: `(\d{3})(\d{3})`}}); err == nil {
		t.Error("expected error for two capture groups")
	}
}

func TestExtractor_Rules(t *testing.T) {
	ids := NewExtractor().Rules()
	want := []string{"pattern_1", "pattern_2", "pattern_3", "pattern_4", "pattern_5"}
	if len(ids) != len(want) {
		t.Fatalf("rule count: got %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("rule %d: got %q, want %q", i, ids[i], want[i])
		}
	}
}
