package ingest

import (
	"testing"

	"github.com/matzpen-project/matzpen/internal/model"
)

func TestClean_DropRules(t *testing.T) {
	reports := []model.Report{
		{ID: "1", Body: "דיווח שגרתי מהגזרה הצפונית", Reliability: "A1"},
		{ID: "  ", Body: "דיווח בלי מזהה", Reliability: "B2"},
		{ID: "3", Body: "קצר", Reliability: "A1"},
		{ID: "4", Body: "מקור לא אמין כלל", Reliability: "F6"},
		{ID: "5", Body: "תצפית על ציר מרכזי בשעה 0630", Reliability: "C3"},
	}

	out, stats := Clean(reports)

	if len(out) != 2 {
		t.Fatalf("Clean kept %d records, want 2", len(out))
	}
	if out[0].ID != "1" || out[1].ID != "5" {
		t.Errorf("Clean kept IDs %s, %s; want 1, 5", out[0].ID, out[1].ID)
	}
	if stats.Initial != 5 || stats.Final != 2 {
		t.Errorf("stats Initial=%d Final=%d, want 5, 2", stats.Initial, stats.Final)
	}
	if stats.RemovedNoID != 1 {
		t.Errorf("RemovedNoID = %d, want 1", stats.RemovedNoID)
	}
	if stats.RemovedShortBody != 1 {
		t.Errorf("RemovedShortBody = %d, want 1", stats.RemovedShortBody)
	}
	if stats.RemovedUnreliable != 1 {
		t.Errorf("RemovedUnreliable = %d, want 1", stats.RemovedUnreliable)
	}
}

func TestClean_LowercaseGradeDropped(t *testing.T) {
	reports := []model.Report{
		{ID: "1", Body: "דיווח מהשטח על תנועה", Reliability: "f2"},
	}
	out, stats := Clean(reports)
	if len(out) != 0 || stats.RemovedUnreliable != 1 {
		t.Errorf("lowercase f grade survived: kept=%d removed=%d", len(out), stats.RemovedUnreliable)
	}
}

func TestClean_StripsMarkup(t *testing.T) {
	reports := []model.Report{
		{ID: "1", Body: "<div>נצפתה תנועה <b>חריגה</b> בגזרה</div><script>alert(1)</script>", Reliability: "A1"},
	}

	out, stats := Clean(reports)

	if len(out) != 1 {
		t.Fatalf("Clean kept %d records, want 1", len(out))
	}
	want := "נצפתה תנועה חריגה בגזרה"
	if out[0].Body != want {
		t.Errorf("Body = %q, want %q", out[0].Body, want)
	}
	if stats.StrippedMarkup != 1 {
		t.Errorf("StrippedMarkup = %d, want 1", stats.StrippedMarkup)
	}
}

func TestClean_MarkupLeavingShortBodyDropped(t *testing.T) {
	reports := []model.Report{
		{ID: "1", Body: "<div><script>x()</script>אב</div>", Reliability: "A1"},
	}
	out, stats := Clean(reports)
	if len(out) != 0 {
		t.Fatalf("short post-markup body survived: %q", out[0].Body)
	}
	if stats.RemovedShortBody != 1 {
		t.Errorf("RemovedShortBody = %d, want 1", stats.RemovedShortBody)
	}
}

func TestClean_PlainAngleBracketKept(t *testing.T) {
	// "5 < 6" has an angle bracket but no tag; body must pass untouched.
	reports := []model.Report{
		{ID: "1", Body: "נספרו 5 < 6 כלי רכב בציר", Reliability: "B1"},
	}
	out, stats := Clean(reports)
	if len(out) != 1 || stats.StrippedMarkup != 0 {
		t.Fatalf("non-markup angle bracket mishandled: kept=%d stripped=%d", len(out), stats.StrippedMarkup)
	}
	if out[0].Body != "נספרו 5 < 6 כלי רכב בציר" {
		t.Errorf("Body altered: %q", out[0].Body)
	}
}

func TestCleanStats_Retention(t *testing.T) {
	s := CleanStats{Initial: 4, Final: 3}
	if got := s.Retention(); got != 0.75 {
		t.Errorf("Retention = %v, want 0.75", got)
	}
	if got := (CleanStats{}).Retention(); got != 0 {
		t.Errorf("empty Retention = %v, want 0", got)
	}
}
