package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/matzpen-project/matzpen/internal/model"
)

const minBodyRunes = 5

// CleanStats counts what the cleansing pass removed and why. Nothing
// is dropped silently; every rule surfaces its count.
type CleanStats struct {
	Initial           int
	RemovedNoID       int
	RemovedShortBody  int
	RemovedUnreliable int
	StrippedMarkup    int
	Final             int
}

// Retention is the fraction of records that survived cleansing.
func (s CleanStats) Retention() float64 {
	if s.Initial == 0 {
		return 0
	}
	return float64(s.Final) / float64(s.Initial)
}

var markupHint = regexp.MustCompile(`<[a-zA-Z!/]`)

// Clean filters and normalizes raw reports: drops records without an
// identifier, records whose body is shorter than five runes after
// normalization, and records graded F (unusable source). Bodies that
// arrive with HTML markup from web-based intake are reduced to their
// visible text first.
func Clean(reports []model.Report) ([]model.Report, CleanStats) {
	stats := CleanStats{Initial: len(reports)}
	out := make([]model.Report, 0, len(reports))

	for _, rep := range reports {
		rep.ID = strings.TrimSpace(rep.ID)
		if rep.ID == "" {
			stats.RemovedNoID++
			continue
		}

		body := rep.Body
		if markupHint.MatchString(body) {
			if stripped, ok := stripMarkup(body); ok {
				body = stripped
				stats.StrippedMarkup++
			}
		}
		body = strings.TrimSpace(body)
		if utf8.RuneCountInString(body) < minBodyRunes {
			stats.RemovedShortBody++
			continue
		}
		rep.Body = body

		if strings.ContainsAny(strings.ToUpper(rep.Reliability), "F") {
			stats.RemovedUnreliable++
			continue
		}

		out = append(out, rep)
	}

	stats.Final = len(out)
	return out, stats
}

// stripMarkup reduces an HTML fragment to its visible text, skipping
// script and style content.
func stripMarkup(fragment string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String(), true
}
