package recommend

import (
	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
	"github.com/poiesic/hscode/search"
)

// Score factors for candidates only one side of the pipeline produced.
// Agreement between the advisor and retrieval is the strongest signal, so
// single-source candidates are discounted.
const (
	retrievalOnlyFactor = 0.8
	stubFactor          = 0.5
)

// tierWeights returns the (advisor, retrieval) blend weights for an advisor
// rating on the 1-10 scale. High-confidence output dominates the blend.
func tierWeights(rating float64) (llm, retrieval float64) {
	switch {
	case rating >= 8:
		return 0.7, 0.3
	case rating >= 6:
		return 0.5, 0.5
	default:
		return 0.3, 0.7
	}
}

// llmOnlyDiscount is the factor applied to a proposal that matched a catalog
// row but was absent from retrieval results, by confidence tier.
func llmOnlyDiscount(confidence float64) float64 {
	switch {
	case confidence >= 8:
		return 0.9
	case confidence >= 6:
		return 0.75
	default:
		return 0.6
	}
}

// candidatesFromMatches converts retrieval matches into candidates with
// composite == hybrid. Used as-is by the basic pipeline.
func candidatesFromMatches(matches []search.Match) []core.Candidate {
	candidates := make([]core.Candidate, len(matches))
	for i, m := range matches {
		mt := core.MatchHybrid
		if m.DirectMatch {
			mt = core.MatchDirect
		}
		candidates[i] = core.Candidate{
			Code:        m.Record.Key,
			NameKo:      m.Record.NameKo,
			NameEn:      m.Record.NameEn,
			Description: m.Record.Description,
			Scores: core.ScoreSet{
				Lexical:   m.Lexical,
				Semantic:  m.Semantic,
				Hybrid:    m.Hybrid,
				Composite: m.Hybrid,
			},
			MatchType:  mt,
			Provenance: m.Record.Provenance,
		}
	}
	return candidates
}

// integrate unions advisor proposals with retrieval matches into a single
// scored candidate set.
//
// A code present on both sides blends by confidence tier. A proposal that
// only matches the catalog is discounted by tier; one matching nothing is
// kept as a low-scored stub so later promotion can still act on it.
// Retrieval-only candidates carry a flat discount.
func integrate(matches []search.Match, proposals []ai.CodeProposal, cat *core.Catalog) []core.Candidate {
	candidates := candidatesFromMatches(matches)

	proposed := make(map[string]ai.CodeProposal, len(proposals))
	for _, p := range proposals {
		code := core.NormalizeCode(p.Code)
		if _, dup := proposed[code]; !dup {
			proposed[code] = p
		}
	}

	for i := range candidates {
		c := &candidates[i]
		p, both := proposed[c.Code]
		if !both {
			c.Scores.Composite = c.Scores.Hybrid * retrievalOnlyFactor
			continue
		}
		delete(proposed, c.Code)

		llmW, retW := tierWeights(p.Confidence)
		c.Scores.External = p.Confidence / 10
		c.Scores.Composite = llmW*(p.Confidence/10) + retW*c.Scores.Hybrid
		if p.Reason != "" {
			c.Justification = p.Reason
		}
	}

	// Proposals retrieval never surfaced.
	for code, p := range proposed {
		external := p.Confidence / 10
		c := core.Candidate{
			Code:          code,
			Scores:        core.ScoreSet{External: external},
			Justification: p.Reason,
		}
		if rec := cat.ByKey(code); rec != nil {
			c.NameKo = rec.NameKo
			c.NameEn = rec.NameEn
			c.Description = rec.Description
			c.Provenance = rec.Provenance
			c.MatchType = core.MatchLLMProposal
			c.Scores.Composite = external * llmOnlyDiscount(p.Confidence)
		} else {
			c.MatchType = core.MatchLLMStub
			c.Scores.Composite = external * stubFactor
		}
		candidates = append(candidates, c)
	}

	return candidates
}
