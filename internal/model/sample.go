package model

// Category classifies why a report was drawn into the tagging sample.
type Category string

const (
	CategoryPositive Category = "positive" // extraction found a coordinate
	CategoryNegative Category = "negative" // extraction found none
	CategoryEdge     Category = "edge"     // forced in for its edge score
)

// SampleEntry is one row of the tagging sample.
type SampleEntry struct {
	ReportID string   `json:"report_id"`
	Category Category `json:"category"`
}

// Sample is the ordered, duplicate-free review sample handed to human
// taggers. Shortfall records, per category, how many requested slots
// could not be filled from the pool; a non-empty shortfall means the
// sample is smaller than the configured target, never padded.
type Sample struct {
	Entries   []SampleEntry    `json:"entries"`
	Shortfall map[Category]int `json:"shortfall,omitempty"`
}

// Size returns the number of entries in the sample.
func (s Sample) Size() int { return len(s.Entries) }

// IDs returns the report identifiers in sample order.
func (s Sample) IDs() []string {
	ids := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		ids[i] = e.ReportID
	}
	return ids
}

// TotalShortfall sums the per-category shortfalls.
func (s Sample) TotalShortfall() int {
	total := 0
	for _, n := range s.Shortfall {
		total += n
	}
	return total
}
