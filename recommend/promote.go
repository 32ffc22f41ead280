package recommend

import (
	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
)

// promotionMultiplier maps a stage-one confidence to a multiple of the best
// observed composite score. Below 8.5 no promotion applies.
func promotionMultiplier(confidence float64) (float64, bool) {
	switch {
	case confidence >= 9.5:
		return 1.4, true
	case confidence >= 9.0:
		return 1.2, true
	case confidence >= 8.5:
		return 1.0, true
	default:
		return 0, false
	}
}

// promote lifts high-confidence stage-one proposals to at least a multiple
// of the best composite score in the batch, inserting any the earlier
// stages dropped. A certain advisor should not be buried by a weak
// retrieval signal.
func promote(candidates []core.Candidate, proposals []ai.CodeProposal, cat *core.Catalog) []core.Candidate {
	if len(proposals) == 0 {
		return candidates
	}

	var maxComposite float64
	for i := range candidates {
		if candidates[i].Scores.Composite > maxComposite {
			maxComposite = candidates[i].Scores.Composite
		}
	}
	if maxComposite == 0 {
		maxComposite = 1
	}

	for _, p := range proposals {
		mult, ok := promotionMultiplier(p.Confidence)
		if !ok {
			continue
		}
		code := core.NormalizeCode(p.Code)
		floor := maxComposite * mult

		found := false
		for i := range candidates {
			c := &candidates[i]
			if c.Code != code {
				continue
			}
			found = true
			if c.Scores.Composite < floor {
				c.Scores.Composite = floor
				c.MatchType = core.MatchPromoted
				if p.Reason != "" {
					c.Justification = p.Reason
				}
			}
			break
		}
		if found {
			continue
		}

		c := core.Candidate{
			Code:          code,
			Scores:        core.ScoreSet{External: p.Confidence / 10, Composite: floor},
			MatchType:     core.MatchPromoted,
			Justification: p.Reason,
		}
		if rec := cat.ByKey(code); rec != nil {
			c.NameKo = rec.NameKo
			c.NameEn = rec.NameEn
			c.Description = rec.Description
			c.Provenance = rec.Provenance
		}
		candidates = append(candidates, c)
	}

	return candidates
}
