package model

import "time"

// Report represents a single intelligence report as delivered by the
// ingest layer. Records are immutable once loaded; downstream stages
// derive new values instead of mutating them.
type Report struct {
	ID          string    `json:"report_id"`             // Unique identifier, never empty after cleansing
	Body        string    `json:"content_body"`          // Free-text report body
	Sector      string    `json:"sector,omitempty"`      // Opaque sector label
	Urgency     string    `json:"urgency,omitempty"`     // Opaque urgency label
	Reliability string    `json:"reliability,omitempty"` // Source reliability grade (e.g. "B2", "D4")
	ReportedAt  time.Time `json:"reported_at,omitempty"` // When the report was filed
}

// ExtractionResult is the extractor's verdict for one report.
// HasCoordinate is true exactly when Coordinate is non-empty.
type ExtractionResult struct {
	HasCoordinate bool   `json:"has_coordinate"`
	Coordinate    string `json:"coordinate,omitempty"` // 6-digit token, kept as a string to preserve leading zeros
	PatternID     string `json:"pattern_id,omitempty"` // Which cascade rule matched (e.g. "pattern_1")
}

// EdgeScore quantifies how challenging a report is to classify.
// Reasons are ordered by heuristic evaluation order; the total is a
// plain sum and does not depend on that order.
type EdgeScore struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// Has reports whether the given reason tag was triggered.
func (e EdgeScore) Has(tag string) bool {
	for _, r := range e.Reasons {
		if r == tag {
			return true
		}
	}
	return false
}

// ScoredReport bundles a report with its derived extraction result and
// edge score. This is the record collection the sampler operates on.
type ScoredReport struct {
	Report     Report           `json:"report"`
	Extraction ExtractionResult `json:"extraction"`
	Edge       EdgeScore        `json:"edge"`
}
