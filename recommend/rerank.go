package recommend

import (
	"strings"

	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
)

// The re-rank stage submits between minRerank and maxRerank candidates.
const (
	minRerank = 10
	maxRerank = 20
)

// Prefix-recovery discounts for rankings matched on a truncated code.
const (
	headingRecoveryFactor    = 0.7 // 8-digit prefix match
	subheadingRecoveryFactor = 0.5 // 6-digit prefix match
)

// rerankWindow returns how many leading candidates the re-rank stage covers.
func rerankWindow(n int) int {
	if n <= minRerank {
		return n
	}
	if n > maxRerank {
		return maxRerank
	}
	return n
}

// rankingInputs builds advisor inputs from candidates. Stub candidates are
// included with only their code; the advisor rates them on the code alone.
func rankingInputs(candidates []core.Candidate) []ai.RankingInput {
	inputs := make([]ai.RankingInput, len(candidates))
	for i, c := range candidates {
		inputs[i] = ai.RankingInput{
			Code:        c.Code,
			NameKo:      c.NameKo,
			NameEn:      c.NameEn,
			Description: c.Description,
		}
	}
	return inputs
}

// lookupRanking finds the advisor rating for a candidate code. Models
// sometimes return truncated codes, so an exact match is tried first, then
// an 8-digit prefix at a discount, then a 6-digit prefix at a deeper one.
// The exact branch compares un-padded digits: a truncated reply is a prefix
// match and takes the prefix discount, never full credit.
func lookupRanking(code string, rankings []ai.CodeRanking) (score float64, reason string, ok bool) {
	for _, r := range rankings {
		if codeDigits(r.Code) == code {
			return r.Score, r.Reason, true
		}
	}
	if len(code) < 8 {
		return 0, "", false
	}
	for _, r := range rankings {
		if d := codeDigits(r.Code); len(d) >= 8 && d[:8] == code[:8] {
			return r.Score * headingRecoveryFactor, r.Reason, true
		}
	}
	for _, r := range rankings {
		if d := codeDigits(r.Code); len(d) >= 6 && d[:6] == code[:6] {
			return r.Score * subheadingRecoveryFactor, r.Reason, true
		}
	}
	return 0, "", false
}

// codeDigits strips separators from a code without padding it.
func codeDigits(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// applyRankings folds advisor ratings into the leading candidates using the
// confidence-tier blend. Candidates with no recoverable rating keep their
// integrated score.
func applyRankings(candidates []core.Candidate, rankings []ai.CodeRanking) {
	window := rerankWindow(len(candidates))
	for i := range candidates[:window] {
		c := &candidates[i]
		score, reason, ok := lookupRanking(c.Code, rankings)
		if !ok {
			continue
		}
		llmW, retW := tierWeights(score)
		c.Scores.External = score / 10
		c.Scores.Composite = llmW*(score/10) + retW*c.Scores.Composite
		if reason != "" {
			c.Justification = reason
		}
	}
}
