package extract

import (
	"sort"
	"strings"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Anchor phrases worth counting when auditing the cascade against a
// corpus. Deliberately wider than the cascade itself so missed anchor
// conventions show up in the scan.
var anchorWords = []string{
	"נ.צ.", "נ.צ", "נ צ", "נקודת ציון", "נק״צ", "נק׳צ",
	"מיקום", "קואורדינטות", "קורדינטות", "נקודה", "משבצת",
	"רשת", "GPS", "קו רוחב", "קו אורך", "צפון", "מזרח",
}

const contextRunes = 30

// WordCount is a token with its occurrence count.
type WordCount struct {
	Word  string
	Count int
}

// AnchorScan is the result of auditing anchor usage across a corpus:
// what precedes coordinate-sized digit runs, and how often each known
// anchor phrase appears at all.
type AnchorScan struct {
	Reports        int
	CandidateRuns  int         // digit runs of 6+ digits found anywhere
	Contexts       []string    // text immediately preceding each run
	AnchorCounts   []WordCount // known anchor phrases, by report count, descending
	PrecedingWords []WordCount // most common tokens just before a run, descending
}

// ScanAnchors audits the anchor phrases of a report collection. The
// scan is diagnostic only; it does not feed the cascade.
func ScanAnchors(reports []model.Report) AnchorScan {
	scan := AnchorScan{Reports: len(reports)}

	precedingCounts := make(map[string]int)
	for _, rep := range reports {
		for _, loc := range digitRunRe.FindAllStringIndex(rep.Body, -1) {
			if loc[1]-loc[0] < 6 {
				continue
			}
			scan.CandidateRuns++
			ctx := lastRunes(rep.Body[:loc[0]], contextRunes)
			scan.Contexts = append(scan.Contexts, ctx)
			words := strings.Fields(ctx)
			if len(words) > 3 {
				words = words[len(words)-3:]
			}
			for _, w := range words {
				precedingCounts[w]++
			}
		}
	}

	for _, word := range anchorWords {
		count := 0
		for _, rep := range reports {
			if strings.Contains(rep.Body, word) {
				count++
			}
		}
		if count > 0 {
			scan.AnchorCounts = append(scan.AnchorCounts, WordCount{Word: word, Count: count})
		}
	}
	sort.SliceStable(scan.AnchorCounts, func(i, j int) bool {
		return scan.AnchorCounts[i].Count > scan.AnchorCounts[j].Count
	})

	for w, c := range precedingCounts {
		scan.PrecedingWords = append(scan.PrecedingWords, WordCount{Word: w, Count: c})
	}
	sort.Slice(scan.PrecedingWords, func(i, j int) bool {
		a, b := scan.PrecedingWords[i], scan.PrecedingWords[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Word < b.Word
	})

	return scan
}

// lastRunes returns up to n trailing runes of s.
func lastRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
