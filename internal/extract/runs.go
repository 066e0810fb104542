package extract

import "regexp"

var digitRunRe = regexp.MustCompile(`\d+`)

// DigitRuns returns the maximal runs of consecutive digits in text,
// in order of appearance. "12 345678" yields ["12", "345678"].
func DigitRuns(text string) []string {
	return digitRunRe.FindAllString(text, -1)
}

// RunCounts summarizes the digit runs of a report body the way the
// scorer and sampler consume them.
type RunCounts struct {
	Total    int // all maximal digit runs
	SixDigit int // runs of exactly 6 digits
	NearMiss int // runs of exactly 5 or 7 digits
}

// CountRuns computes RunCounts for a body in one pass.
func CountRuns(text string) RunCounts {
	var c RunCounts
	for _, run := range DigitRuns(text) {
		c.Total++
		switch len(run) {
		case 6:
			c.SixDigit++
		case 5, 7:
			c.NearMiss++
		}
	}
	return c
}
