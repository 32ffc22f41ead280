package recommend

import (
	"context"
	"time"

	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
)

// RecommendUltimate runs the five-stage pipeline: independent advisor
// proposal, hybrid retrieval, confidence-tiered integration, advisor
// re-rank of the leading candidates, and high-confidence promotion.
//
// Stages are strictly sequential. Each advisor stage that fails is skipped
// and recorded in StagesDegraded; with the advisor fully unavailable the
// result ranks identically to the basic pipeline.
func (o *Orchestrator) RecommendUltimate(ctx context.Context, req Request) (*core.RecommendationBatch, error) {
	start := time.Now()
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := o.backend.Ensure(ctx); err != nil {
		return nil, err
	}

	var degraded []string

	// Stage 1: blind proposal. The advisor sees only the product text,
	// never the retrieval results, so the two signals stay independent.
	var proposals []ai.CodeProposal
	if o.advisor != nil {
		var err error
		proposals, err = o.advisor.ProposeCodes(ctx, req.Description, req.Material, req.Usage)
		if err != nil {
			o.logger.Warn("proposal stage degraded", "err", err)
			degraded = append(degraded, "proposal")
			proposals = nil
		}
	} else {
		degraded = append(degraded, "proposal")
	}

	// Stage 2: retrieval.
	result, err := o.backend.Search(ctx, req.Description, req.Material, req.Usage)
	if err != nil {
		return nil, err
	}

	// Stage 3: union the two signals.
	candidates := integrate(result.Matches, proposals, o.backend.Catalog())

	// Stage 4: re-rank the leading candidates.
	if o.advisor != nil && len(candidates) > 0 {
		sortByComposite(candidates)
		window := rerankWindow(len(candidates))

		rankings, err := o.advisor.RankCandidates(ctx, req.Description, rankingInputs(candidates[:window]))
		if err != nil {
			o.logger.Warn("rerank stage degraded", "err", err)
			degraded = append(degraded, "rerank")
		} else {
			applyRankings(candidates, rankings)
		}
	} else if o.advisor == nil {
		degraded = append(degraded, "rerank")
	}

	// Stage 5: promotion.
	candidates = promote(candidates, proposals, o.backend.Catalog())

	batch := o.finalize(candidates, result, req, core.MethodUltimate, degraded)
	batch.Elapsed = time.Since(start)
	return batch, nil
}
