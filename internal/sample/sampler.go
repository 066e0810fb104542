// Package sample draws the bounded, stratified review sample that is
// sent out for human tagging. The draw is biased toward high edge
// scores so taggers spend their time on the records most likely to
// expose extractor mistakes.
package sample

import (
	"math/rand"
	"sort"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/model"
)

// Targets is the per-category sample composition.
type Targets struct {
	Positive int
	Negative int
	Edge     int
}

// Sum is the configured total sample size.
func (t Targets) Sum() int { return t.Positive + t.Negative + t.Edge }

// NegativeQuotas splits the negative draw into its three sub-buckets,
// drawn in field order.
type NegativeQuotas struct {
	NoNumbers      int // bodies with no digit runs at all
	NonSixDigit    int // digit runs present, none of length 6
	MissedSixDigit int // a 6-digit run present yet extraction negative
}

// Sampler draws stratified samples. The random source is derived from
// Seed on every Draw, so identical inputs and seed produce identical
// samples.
type Sampler struct {
	targets   Targets
	negQuotas NegativeQuotas
	seed      int64
}

// New builds a sampler from configuration.
func New(cfg model.SamplingConfig) *Sampler {
	return &Sampler{
		targets: Targets{
			Positive: cfg.Positive,
			Negative: cfg.Negative,
			Edge:     cfg.Edge,
		},
		negQuotas: NegativeQuotas{
			NoNumbers:      cfg.NoNumbers,
			NonSixDigit:    cfg.NonSixDigit,
			MissedSixDigit: cfg.MissedSixDigit,
		},
		seed: cfg.Seed,
	}
}

// draw bookkeeping over indices into the input slice.
type draw struct {
	records []model.ScoredReport
	runs    []extract.RunCounts
	rng     *rand.Rand
	claimed map[string]bool
	entries []model.SampleEntry
	// unfilled slots per category, recorded before dedup
	short map[model.Category]int
}

// Draw produces the review sample. Input records are not mutated. The
// returned Sample reports any per-category shortfall instead of
// padding; the caller decides whether a smaller sample is acceptable.
func (s *Sampler) Draw(records []model.ScoredReport) model.Sample {
	d := &draw{
		records: records,
		runs:    make([]extract.RunCounts, len(records)),
		rng:     rand.New(rand.NewSource(s.seed)),
		claimed: make(map[string]bool),
		short:   make(map[model.Category]int),
	}
	for i, rec := range records {
		d.runs[i] = extract.CountRuns(rec.Report.Body)
	}

	d.drawPositive(s.targets.Positive)
	d.drawNegative(s.targets.Negative, s.negQuotas)
	d.drawEdge(s.targets.Edge)
	d.finish(s.targets.Sum())

	sample := model.Sample{Entries: d.entries}
	for cat, n := range d.short {
		if n > 0 {
			if sample.Shortfall == nil {
				sample.Shortfall = make(map[model.Category]int)
			}
			sample.Shortfall[cat] = n
		}
	}
	return sample
}

// drawPositive draws records with an extracted coordinate, spread
// evenly across sectors and biased toward high edge scores: each
// sector's quota is drawn uniformly from its top 2x-quota records.
func (d *draw) drawPositive(target int) {
	if target <= 0 {
		return
	}
	pool := d.available(func(i int) bool { return d.records[i].Extraction.HasCoordinate })

	drawn := 0
	sectors := d.sectorsOf(pool)
	if len(sectors) > 0 {
		perSector := target / len(sectors)
		for _, sector := range sectors {
			sectorPool := d.filter(pool, func(i int) bool {
				return d.records[i].Report.Sector == sector && !d.claimed[d.records[i].Report.ID]
			})
			quota := perSector
			if quota > len(sectorPool) {
				quota = len(sectorPool)
			}
			if quota == 0 {
				continue
			}
			oversample := d.topByEdge(sectorPool, quota*2)
			for _, idx := range d.uniform(oversample, quota) {
				d.claim(idx, model.CategoryPositive)
				drawn++
			}
		}
	}

	// Backfill shortfall uniformly from the rest of the positive pool.
	if drawn < target {
		rest := d.filter(pool, func(i int) bool { return !d.claimed[d.records[i].Report.ID] })
		for _, idx := range d.uniform(rest, target-drawn) {
			d.claim(idx, model.CategoryPositive)
			drawn++
		}
	}
	if drawn > target {
		d.trim(model.CategoryPositive, target)
		drawn = target
	}
	d.short[model.CategoryPositive] = target - drawn
}

// drawNegative draws records without a coordinate from three disjoint
// buckets in fixed order. The third bucket (potential false negatives)
// is taken by highest edge score rather than at random.
func (d *draw) drawNegative(target int, quotas NegativeQuotas) {
	if target <= 0 {
		return
	}
	negative := func(i int) bool { return !d.records[i].Extraction.HasCoordinate }

	drawn := 0
	claim := func(indices []int) {
		for _, idx := range indices {
			d.claim(idx, model.CategoryNegative)
			drawn++
		}
	}

	noNumbers := d.available(func(i int) bool { return negative(i) && d.runs[i].Total == 0 })
	claim(d.uniform(noNumbers, min(quotas.NoNumbers, target-drawn)))

	nonSix := d.available(func(i int) bool {
		return negative(i) && d.runs[i].Total > 0 && d.runs[i].SixDigit == 0
	})
	claim(d.uniform(nonSix, min(quotas.NonSixDigit, target-drawn)))

	missed := d.available(func(i int) bool { return negative(i) && d.runs[i].SixDigit > 0 })
	claim(d.topByEdge(missed, min(quotas.MissedSixDigit, target-drawn)))

	if drawn < target {
		rest := d.available(negative)
		claim(d.uniform(rest, target-drawn))
	}
	if drawn > target {
		d.trim(model.CategoryNegative, target)
		drawn = target
	}
	d.short[model.CategoryNegative] = target - drawn
}

// drawEdge takes the most challenging records among those not already
// claimed, forcing an even split between extraction outcomes. A side
// that runs out is backfilled from the unclaimed pool across either
// outcome, still by edge score.
func (d *draw) drawEdge(target int) {
	if target <= 0 {
		return
	}
	perSide := target / 2
	drawn := 0

	positives := d.available(func(i int) bool { return d.records[i].Extraction.HasCoordinate })
	for _, idx := range d.topByEdge(positives, perSide) {
		d.claim(idx, model.CategoryEdge)
		drawn++
	}
	negatives := d.available(func(i int) bool { return !d.records[i].Extraction.HasCoordinate })
	for _, idx := range d.topByEdge(negatives, perSide) {
		d.claim(idx, model.CategoryEdge)
		drawn++
	}

	if drawn < target {
		rest := d.available(func(int) bool { return true })
		for _, idx := range d.topByEdge(rest, target-drawn) {
			d.claim(idx, model.CategoryEdge)
			drawn++
		}
	}
	d.short[model.CategoryEdge] = target - drawn
}

// finish deduplicates by report ID (keep-first), backfills any gap
// with the highest-scoring unclaimed records, and shuffles so category
// grouping does not leak to the tagger.
func (d *draw) finish(targetTotal int) {
	seen := make(map[string]bool, len(d.entries))
	deduped := d.entries[:0]
	for _, e := range d.entries {
		if seen[e.ReportID] {
			continue
		}
		seen[e.ReportID] = true
		deduped = append(deduped, e)
	}
	d.entries = deduped

	if len(d.entries) < targetTotal {
		rest := d.available(func(int) bool { return true })
		for _, idx := range d.topByEdge(rest, targetTotal-len(d.entries)) {
			// Backfill rows carry their extraction outcome as category.
			cat := model.CategoryNegative
			if d.records[idx].Extraction.HasCoordinate {
				cat = model.CategoryPositive
			}
			d.claim(idx, cat)
		}
	}

	d.rng.Shuffle(len(d.entries), func(i, j int) {
		d.entries[i], d.entries[j] = d.entries[j], d.entries[i]
	})
}

func (d *draw) claim(idx int, cat model.Category) {
	id := d.records[idx].Report.ID
	if d.claimed[id] {
		return
	}
	d.claimed[id] = true
	d.entries = append(d.entries, model.SampleEntry{ReportID: id, Category: cat})
}

// trim uniformly down-samples the entries of one category to n,
// releasing the claims of dropped records.
func (d *draw) trim(cat model.Category, n int) {
	var catIdx []int
	for i, e := range d.entries {
		if e.Category == cat {
			catIdx = append(catIdx, i)
		}
	}
	if len(catIdx) <= n {
		return
	}
	keep := make(map[int]bool, n)
	for _, p := range d.rng.Perm(len(catIdx))[:n] {
		keep[catIdx[p]] = true
	}
	kept := d.entries[:0]
	for i, e := range d.entries {
		if e.Category == cat && !keep[i] {
			delete(d.claimed, e.ReportID)
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
}

// available returns unclaimed record indices matching the predicate,
// in input order.
func (d *draw) available(pred func(int) bool) []int {
	var out []int
	for i := range d.records {
		if !d.claimed[d.records[i].Report.ID] && pred(i) {
			out = append(out, i)
		}
	}
	return out
}

func (d *draw) filter(pool []int, pred func(int) bool) []int {
	var out []int
	for _, i := range pool {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out
}

// sectorsOf lists the distinct sectors of a pool in first-appearance
// order, which keeps the per-sector iteration deterministic.
func (d *draw) sectorsOf(pool []int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range pool {
		s := d.records[i].Report.Sector
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// topByEdge returns up to n indices ordered by descending edge score.
// The sort is stable so ties keep input order and the result stays
// reproducible.
func (d *draw) topByEdge(pool []int, n int) []int {
	if n <= 0 {
		return nil
	}
	sorted := append([]int(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return d.records[sorted[i]].Edge.Score > d.records[sorted[j]].Edge.Score
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// uniform draws up to n indices without replacement from pool using
// the sampler's seeded source.
func (d *draw) uniform(pool []int, n int) []int {
	if n <= 0 {
		return nil
	}
	if n >= len(pool) {
		return append([]int(nil), pool...)
	}
	out := make([]int, 0, n)
	for _, p := range d.rng.Perm(len(pool))[:n] {
		out = append(out, pool[p])
	}
	return out
}
