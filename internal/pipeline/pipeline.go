// Package pipeline wires the per-record pass shared by the extraction
// and sampling stages: extract a coordinate, then score the record for
// edge-case difficulty.
package pipeline

import (
	"context"
	"fmt"

	"github.com/matzpen-project/matzpen/internal/extract"
	"github.com/matzpen-project/matzpen/internal/model"
	"github.com/matzpen-project/matzpen/internal/score"
	"github.com/matzpen-project/matzpen/internal/worker"
)

// Pipeline bundles the extractor, scorer, and worker pool built from
// one configuration.
type Pipeline struct {
	extractor *extract.Extractor
	scorer    *score.Scorer
	pool      *worker.Pool
}

// New builds the pipeline. Config may override the pattern cascade and
// the heuristic weights; empty overrides mean the built-in tables.
func New(cfg *model.Config) (*Pipeline, error) {
	extractor := extract.NewExtractor()
	if len(cfg.Extraction.Rules) > 0 {
		var err error
		extractor, err = extract.NewExtractorFromRules(cfg.Extraction.Rules)
		if err != nil {
			return nil, fmt.Errorf("building cascade: %w", err)
		}
	}

	scorer := score.NewScorer()
	if len(cfg.Scoring.Weights) > 0 {
		scorer = score.NewScorerWithWeights(cfg.Scoring.Weights)
	}

	return &Pipeline{
		extractor: extractor,
		scorer:    scorer,
		pool:      worker.New(cfg.Extraction.Workers),
	}, nil
}

// Extractor exposes the configured extractor for diagnostics.
func (p *Pipeline) Extractor() *extract.Extractor { return p.extractor }

// Process runs extraction and scoring over every report. Both steps
// are pure per-record functions, so the pass parallelizes across the
// pool while the output stays input-ordered.
func (p *Pipeline) Process(ctx context.Context, reports []model.Report) ([]model.ScoredReport, error) {
	out := make([]model.ScoredReport, len(reports))
	err := p.pool.Run(ctx, len(reports), func(i int) {
		rep := reports[i]
		res := p.extractor.Extract(rep.Body)
		out[i] = model.ScoredReport{
			Report:     rep,
			Extraction: res,
			Edge:       p.scorer.Score(rep, res),
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
