package extract

import (
	"fmt"
	"regexp"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Rule is one coordinate-recognition rule: an anchor-phrase pattern
// with a single capture group for the 6-digit token.
type Rule struct {
	ID string
	re *regexp.Regexp
}

// The built-in cascade, in priority order. The order is deliberate:
// the strict dotted anchor outranks the looser spaced and misspelled
// variants, so ambiguous text resolves to the most canonical form.
var defaultRules = []model.RuleConfig{
	{ID: "pattern_1", Regex: `(?i)נ\.צ\.?\s*(\d{6})`},
	{ID: "pattern_2", Regex: `(?i)נקודת\s+ציון\s*[:\s]*(\d{6})`},
	{ID: "pattern_3", Regex: `(?i)מיקום\s*[:\s]*(\d{6})`},
	{ID: "pattern_4", Regex: `(?i)נ\s*צ\s*[:\s]*(\d{6})`},
	{ID: "pattern_5", Regex: `(?i)קו[אר]*[דד]*ינט[הא]*\s*[:\s]*(\d{6})`},
}

// DefaultRules returns a copy of the built-in cascade definition, for
// config display and tests.
func DefaultRules() []model.RuleConfig {
	rules := make([]model.RuleConfig, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// Extractor applies the pattern cascade to report bodies. It carries
// no per-record state; Extract is a pure function.
type Extractor struct {
	rules []Rule
}

// NewExtractor builds an extractor with the built-in cascade.
func NewExtractor() *Extractor {
	e, err := NewExtractorFromRules(defaultRules)
	if err != nil {
		// The built-in rules are compile-time constants.
		panic(err)
	}
	return e
}

// NewExtractorFromRules builds an extractor from an explicit cascade,
// keeping the given priority order. Each regex must compile and carry
// exactly one capture group.
func NewExtractorFromRules(specs []model.RuleConfig) (*Extractor, error) {
	if len(specs) == 0 {
		specs = defaultRules
	}
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("rule %s: expected exactly one capture group, got %d", spec.ID, re.NumSubexp())
		}
		rules = append(rules, Rule{ID: spec.ID, re: re})
	}
	return &Extractor{rules: rules}, nil
}

// Extract runs the cascade over a report body. Rules are tried in
// priority order and the first match wins; later rules are not
// consulted even if they would also match. Empty input yields a
// negative result, not an error.
func (e *Extractor) Extract(text string) model.ExtractionResult {
	if text == "" {
		return model.ExtractionResult{}
	}
	for _, rule := range e.rules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return model.ExtractionResult{
				HasCoordinate: true,
				Coordinate:    m[1],
				PatternID:     rule.ID,
			}
		}
	}
	return model.ExtractionResult{}
}

// Rules returns the cascade's rule IDs in priority order.
func (e *Extractor) Rules() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.ID
	}
	return ids
}
