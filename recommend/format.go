package recommend

import (
	"sort"

	"github.com/poiesic/hscode/core"
)

func sortByComposite(candidates []core.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Scores.Composite > candidates[j].Scores.Composite
	})
}

// formatCandidates sorts by composite score, normalizes confidence against
// the batch maximum, fills missing justifications and truncates to topK.
func formatCandidates(candidates []core.Candidate, topK int) []core.Candidate {
	sortByComposite(candidates)

	var maxComposite float64
	if len(candidates) > 0 {
		maxComposite = candidates[0].Scores.Composite
	}

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	for i := range candidates {
		c := &candidates[i]
		if maxComposite > 0 {
			c.Confidence = core.Clamp01(c.Scores.Composite / maxComposite)
		}
		if c.Justification == "" {
			c.Justification = defaultJustification(c)
		}
	}
	return candidates
}

func defaultJustification(c *core.Candidate) string {
	switch c.MatchType {
	case core.MatchDirect:
		return "standard product name matches the query directly"
	case core.MatchLLMProposal:
		return "proposed by the classification model and present in the catalog"
	case core.MatchLLMStub:
		return "proposed by the classification model; not in the current catalog"
	case core.MatchPromoted:
		return "high-confidence model proposal"
	default:
		return "lexical and semantic match against the catalog text"
	}
}
