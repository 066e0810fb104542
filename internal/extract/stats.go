package extract

import (
	"sort"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Stats aggregates extraction outcomes over a record collection. This
// is a read-only computation; the extractor itself keeps no counters.
type Stats struct {
	Total           int
	WithCoordinate  int
	Rate            float64 // fraction in [0,1]
	PerPattern      map[string]int
	PatternsInOrder []string // pattern IDs sorted by descending count
}

// Without returns the count of records with no extracted coordinate.
func (s Stats) Without() int { return s.Total - s.WithCoordinate }

// ComputeStats summarizes a batch of extraction results.
func ComputeStats(results []model.ExtractionResult) Stats {
	s := Stats{PerPattern: make(map[string]int)}
	for _, r := range results {
		s.Total++
		if r.HasCoordinate {
			s.WithCoordinate++
			s.PerPattern[r.PatternID]++
		}
	}
	if s.Total > 0 {
		s.Rate = float64(s.WithCoordinate) / float64(s.Total)
	}
	for id := range s.PerPattern {
		s.PatternsInOrder = append(s.PatternsInOrder, id)
	}
	sort.Slice(s.PatternsInOrder, func(i, j int) bool {
		a, b := s.PatternsInOrder[i], s.PatternsInOrder[j]
		if s.PerPattern[a] != s.PerPattern[b] {
			return s.PerPattern[a] > s.PerPattern[b]
		}
		return a < b
	})
	return s
}

// AttributeRate is the extraction rate for one value of a categorical
// attribute.
type AttributeRate struct {
	Value          string
	Total          int
	WithCoordinate int
	Rate           float64
}

// RateBy slices the extraction rate by a categorical attribute of the
// report (sector, urgency), sorted by descending rate.
func RateBy(records []model.ScoredReport, attr func(model.Report) string) []AttributeRate {
	totals := make(map[string]*AttributeRate)
	var order []string
	for _, rec := range records {
		v := attr(rec.Report)
		ar, ok := totals[v]
		if !ok {
			ar = &AttributeRate{Value: v}
			totals[v] = ar
			order = append(order, v)
		}
		ar.Total++
		if rec.Extraction.HasCoordinate {
			ar.WithCoordinate++
		}
	}
	out := make([]AttributeRate, 0, len(order))
	for _, v := range order {
		ar := totals[v]
		if ar.Total > 0 {
			ar.Rate = float64(ar.WithCoordinate) / float64(ar.Total)
		}
		out = append(out, *ar)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out
}
