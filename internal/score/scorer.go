// Package score assigns each report an edge-case difficulty score.
// High scores mark records where the extractor is most likely to be
// wrong, so the sampler can bias the human-review sample toward them.
package score

import (
	"strings"
	"unicode/utf8"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/model"
)

// Reason tags, one per heuristic.
const (
	TagVeryShortText     = "very_short_text"
	TagVeryLongText      = "very_long_text"
	TagManyNumbers       = "many_numbers"
	TagNearSixDigit      = "near_6_digit"
	TagMultipleSixDigits = "multiple_6_digits"
	TagMissedPotential   = "missed_potential_coord"
	TagMultipleCands     = "multiple_candidates"
	TagLowReliability    = "low_reliability"
	TagNonStandardAnchor = "non_standard_anchor"
	TagCoordAtEdge       = "coord_at_edge"
)

const (
	shortTextLimit = 30
	longTextLimit  = 200
	manyRunsLimit  = 5
	leadingEdge    = 15 // runes from the start that count as "at the edge"
	trailingEdge   = 20 // runes from the end that count as "at the edge"
)

// Context is the read-only per-record view the heuristics evaluate
// against. Everything is precomputed once so each condition stays a
// one-line predicate.
type Context struct {
	Report     model.Report
	Extraction model.ExtractionResult
	BodyLen    int // in runes
	Runs       extract.RunCounts
	CoordPos   int // rune offset of the extracted token in the body, -1 if absent
}

// NewContext precomputes the scoring context for one record.
func NewContext(rep model.Report, res model.ExtractionResult) *Context {
	ctx := &Context{
		Report:     rep,
		Extraction: res,
		BodyLen:    utf8.RuneCountInString(rep.Body),
		Runs:       extract.CountRuns(rep.Body),
		CoordPos:   -1,
	}
	if res.HasCoordinate {
		if idx := strings.Index(rep.Body, res.Coordinate); idx >= 0 {
			ctx.CoordPos = utf8.RuneCountInString(rep.Body[:idx])
		}
	}
	return ctx
}

// Heuristic is one row of the scoring table: a fixed weight added when
// the condition holds, plus the reason tag recorded for it.
type Heuristic struct {
	Tag    string
	Weight int
	When   func(*Context) bool
}

// The hand-tuned default table. Conditions are independent and
// additive; their order only decides reason-tag ordering, never the
// total. Weights are calibration, not law — override them via config
// when retuning for a different corpus.
func defaultHeuristics() []Heuristic {
	return []Heuristic{
		{TagVeryShortText, 3, func(c *Context) bool { return c.BodyLen < shortTextLimit }},
		{TagVeryLongText, 2, func(c *Context) bool { return c.BodyLen > longTextLimit }},
		{TagManyNumbers, 3, func(c *Context) bool { return c.Runs.Total >= manyRunsLimit }},
		{TagNearSixDigit, 4, func(c *Context) bool { return c.Runs.NearMiss > 0 }},
		{TagMultipleSixDigits, 5, func(c *Context) bool { return c.Runs.SixDigit > 1 }},
		{TagMissedPotential, 6, func(c *Context) bool {
			return !c.Extraction.HasCoordinate && c.Runs.SixDigit > 0
		}},
		{TagMultipleCands, 4, func(c *Context) bool {
			return c.Extraction.HasCoordinate && c.Runs.SixDigit > 1
		}},
		{TagLowReliability, 2, func(c *Context) bool {
			grade := strings.ToUpper(c.Report.Reliability)
			return strings.ContainsAny(grade, "DF")
		}},
		{TagNonStandardAnchor, 3, func(c *Context) bool {
			return strings.Contains(c.Report.Body, "נצ") && !strings.Contains(c.Report.Body, "נ.צ")
		}},
		{TagCoordAtEdge, 2, func(c *Context) bool {
			if !c.Extraction.HasCoordinate || c.CoordPos < 0 {
				return false
			}
			return c.CoordPos < leadingEdge || c.CoordPos > c.BodyLen-trailingEdge
		}},
	}
}

// Scorer evaluates the heuristic table. Pure: same inputs, same score,
// no shared counters.
type Scorer struct {
	heuristics []Heuristic
}

// NewScorer builds a scorer with the default table.
func NewScorer() *Scorer {
	return &Scorer{heuristics: defaultHeuristics()}
}

// NewScorerWithWeights builds a scorer with per-tag weight overrides.
// A zero override disables the heuristic; unknown tags are ignored.
func NewScorerWithWeights(overrides map[string]int) *Scorer {
	hs := defaultHeuristics()
	if len(overrides) > 0 {
		out := hs[:0]
		for _, h := range hs {
			if w, ok := overrides[h.Tag]; ok {
				if w == 0 {
					continue
				}
				h.Weight = w
			}
			out = append(out, h)
		}
		hs = out
	}
	return &Scorer{heuristics: hs}
}

// Score evaluates every heuristic against one report and its
// extraction result. All conditions are checked unconditionally; the
// result is the additive total plus the triggered tags in table order.
func (s *Scorer) Score(rep model.Report, res model.ExtractionResult) model.EdgeScore {
	ctx := NewContext(rep, res)
	var edge model.EdgeScore
	for _, h := range s.heuristics {
		if h.When(ctx) {
			edge.Score += h.Weight
			edge.Reasons = append(edge.Reasons, h.Tag)
		}
	}
	return edge
}

// Tags returns the reason tags of the active table, in order.
func (s *Scorer) Tags() []string {
	tags := make([]string, len(s.heuristics))
	for i, h := range s.heuristics {
		tags[i] = h.Tag
	}
	return tags
}
