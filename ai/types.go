package ai

// CodeProposal is one classification code proposed independently by the
// language model, before any retrieval evidence is considered.
type CodeProposal struct {
	// Code is the proposed classification code, normalized by the caller.
	Code string

	// Confidence is the model's self-reported confidence from 1 to 10.
	Confidence float64

	// Reason is the model's short justification.
	Reason string
}

// RankingInput describes one retrieved candidate sent back to the model for
// re-ranking.
type RankingInput struct {
	Code        string
	NameKo      string
	NameEn      string
	Description string
}

// CodeRanking is the model's relevance judgment for one candidate code.
type CodeRanking struct {
	// Code echoes the candidate code being scored.
	Code string

	// Score is the model's relevance rating from 1 to 10.
	Score float64

	// Reason is the model's short justification.
	Reason string
}
