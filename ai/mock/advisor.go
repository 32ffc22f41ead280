package mock

import (
	"context"

	"github.com/poiesic/hscode/ai"
)

// MockAdvisor is a test double for ai.Advisor.
// It allows custom behavior injection via function fields.
type MockAdvisor struct {
	// ProposeCodesFunc is called by ProposeCodes if set.
	// If nil, uses default behavior.
	ProposeCodesFunc func(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error)

	// RankCandidatesFunc is called by RankCandidates if set.
	// If nil, uses default behavior.
	RankCandidatesFunc func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error)

	callCount int
}

// NewMockAdvisor creates a mock advisor with default behavior.
func NewMockAdvisor() *MockAdvisor {
	return &MockAdvisor{}
}

// ProposeCodes returns a single fixed proposal by default.
func (m *MockAdvisor) ProposeCodes(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error) {
	m.callCount++

	if m.ProposeCodesFunc != nil {
		return m.ProposeCodesFunc(ctx, description, material, usage)
	}

	return []ai.CodeProposal{
		{Code: "8539500000", Confidence: 7, Reason: "mock proposal"},
	}, nil
}

// RankCandidates rates every candidate with a neutral score by default.
func (m *MockAdvisor) RankCandidates(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
	m.callCount++

	if m.RankCandidatesFunc != nil {
		return m.RankCandidatesFunc(ctx, description, candidates)
	}

	rankings := make([]ai.CodeRanking, len(candidates))
	for i, c := range candidates {
		rankings[i] = ai.CodeRanking{Code: c.Code, Score: 5, Reason: "mock ranking"}
	}
	return rankings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockAdvisor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockAdvisor) Reset() {
	m.callCount = 0
	m.ProposeCodesFunc = nil
	m.RankCandidatesFunc = nil
}
