package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/ai/mock"
	"github.com/poiesic/hscode/core"
	"github.com/poiesic/hscode/search"
)

type fakeBackend struct {
	matches   []search.Match
	catalog   *core.Catalog
	ensureErr error
}

func (f *fakeBackend) Ensure(ctx context.Context) error { return f.ensureErr }

func (f *fakeBackend) Search(ctx context.Context, query, material, usage string) (*search.Result, error) {
	return &search.Result{Matches: f.matches, ExpandedQuery: query}, nil
}

func (f *fakeBackend) Catalog() *core.Catalog { return f.catalog }

func makeRecord(key, nameKo string) core.ClassificationRecord {
	rec := core.ClassificationRecord{
		Key:        key,
		NameKo:     nameKo,
		FinalText:  nameKo,
		Provenance: core.SourcePrimary,
	}
	rec.RestorePrefixes()
	return rec
}

func makeMatch(key, nameKo string, hybrid float64) search.Match {
	return search.Match{Record: makeRecord(key, nameKo), Hybrid: hybrid}
}

func testBackend() *fakeBackend {
	records := []core.ClassificationRecord{
		makeRecord("8539500000", "LED 전구"),
		makeRecord("9405990000", "조명기구 부분품"),
		makeRecord("8541100000", "다이오드"),
	}
	return &fakeBackend{
		matches: []search.Match{
			{Record: records[0], Lexical: 0.9, Semantic: 0.8, Hybrid: 0.9},
			{Record: records[1], Lexical: 0.5, Semantic: 0.6, Hybrid: 0.55},
			{Record: records[2], Lexical: 0.2, Semantic: 0.3, Hybrid: 0.25},
		},
		catalog: &core.Catalog{Records: records},
	}
}

func TestRecommendEmptyQueryRejected(t *testing.T) {
	o := NewOrchestrator(testBackend(), nil)

	_, err := o.Recommend(context.Background(), Request{Description: "   "})

	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestRecommendRanksByHybridScore(t *testing.T) {
	o := NewOrchestrator(testBackend(), nil)

	batch, err := o.Recommend(context.Background(), Request{Description: "LED 전구", TopK: 2})

	require.NoError(t, err)
	require.Len(t, batch.Candidates, 2)
	assert.Equal(t, "8539500000", batch.Candidates[0].Code)
	assert.Equal(t, "9405990000", batch.Candidates[1].Code)
	assert.Equal(t, 3, batch.TotalCandidates)
	assert.Equal(t, core.MethodBasic, batch.Method)
	assert.Equal(t, 1.0, batch.Candidates[0].Confidence, "leader normalizes to full confidence")
	assert.Less(t, batch.Candidates[1].Confidence, 1.0)
}

func TestRecommendConfidenceBounded(t *testing.T) {
	o := NewOrchestrator(testBackend(), nil)

	batch, err := o.Recommend(context.Background(), Request{Description: "전구"})

	require.NoError(t, err)
	for _, c := range batch.Candidates {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
	}
}

func TestRecommendBlendsAdvisorRating(t *testing.T) {
	advisor := mock.NewMockAdvisor()
	advisor.RankCandidatesFunc = func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
		rankings := make([]ai.CodeRanking, len(candidates))
		for i, c := range candidates {
			rankings[i] = ai.CodeRanking{Code: c.Code, Score: 10, Reason: "rated"}
		}
		return rankings, nil
	}
	o := NewOrchestrator(testBackend(), advisor)

	batch, err := o.Recommend(context.Background(), Request{Description: "LED 전구", UseLLM: true})

	require.NoError(t, err)
	require.NotEmpty(t, batch.Candidates)
	// 0.6*0.9 + 0.4*1.0
	assert.InDelta(t, 0.94, batch.Candidates[0].Scores.Composite, 1e-9)
	assert.Equal(t, "rated", batch.Candidates[0].Justification)
	assert.Empty(t, batch.StagesDegraded)
}

func TestRecommendRatingFailureDegrades(t *testing.T) {
	advisor := mock.NewMockAdvisor()
	advisor.RankCandidatesFunc = func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
		return nil, errors.New("service down")
	}
	o := NewOrchestrator(testBackend(), advisor)

	batch, err := o.Recommend(context.Background(), Request{Description: "LED 전구", UseLLM: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"rating"}, batch.StagesDegraded)
	assert.Equal(t, "8539500000", batch.Candidates[0].Code)
}

func TestUltimateOutageEqualsBasic(t *testing.T) {
	down := mock.NewMockAdvisor()
	down.ProposeCodesFunc = func(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error) {
		return nil, errors.New("service down")
	}
	down.RankCandidatesFunc = func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
		return nil, errors.New("service down")
	}

	backend := testBackend()
	o := NewOrchestrator(backend, down)
	req := Request{Description: "LED 전구", TopK: 3}

	ultimate, err := o.RecommendUltimate(context.Background(), req)
	require.NoError(t, err)
	basic, err := NewOrchestrator(backend, nil).Recommend(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, ultimate.Candidates, len(basic.Candidates))
	for i := range ultimate.Candidates {
		assert.Equal(t, basic.Candidates[i].Code, ultimate.Candidates[i].Code)
		assert.InDelta(t, basic.Candidates[i].Confidence, ultimate.Candidates[i].Confidence, 1e-9)
	}
	assert.ElementsMatch(t, []string{"proposal", "rerank"}, ultimate.StagesDegraded)
}

func TestUltimateBlendsProposalWithRetrieval(t *testing.T) {
	advisor := mock.NewMockAdvisor()
	advisor.ProposeCodesFunc = func(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error) {
		return []ai.CodeProposal{
			{Code: "8539500000", Confidence: 8, Reason: "LED lamp heading"},
		}, nil
	}
	advisor.RankCandidatesFunc = func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
		return nil, errors.New("service down")
	}
	o := NewOrchestrator(testBackend(), advisor)

	batch, err := o.RecommendUltimate(context.Background(), Request{Description: "LED 전구"})

	require.NoError(t, err)
	require.NotEmpty(t, batch.Candidates)
	top := batch.Candidates[0]
	assert.Equal(t, "8539500000", top.Code)
	// confidence tier >= 8: 0.7*(8/10) + 0.3*0.9
	assert.InDelta(t, 0.83, top.Scores.Composite, 1e-9)
	assert.Equal(t, "LED lamp heading", top.Justification)
}

func TestUltimatePromotesHighConfidenceStub(t *testing.T) {
	advisor := mock.NewMockAdvisor()
	advisor.ProposeCodesFunc = func(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error) {
		return []ai.CodeProposal{
			{Code: "0123456789", Confidence: 9.5, Reason: "specialist code"},
		}, nil
	}
	advisor.RankCandidatesFunc = func(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
		return nil, errors.New("service down")
	}
	o := NewOrchestrator(testBackend(), advisor)

	batch, err := o.RecommendUltimate(context.Background(), Request{Description: "특수 품목"})

	require.NoError(t, err)
	require.NotEmpty(t, batch.Candidates)
	top := batch.Candidates[0]
	assert.Equal(t, "0123456789", top.Code)
	assert.Equal(t, core.MatchPromoted, top.MatchType)
	assert.Equal(t, 1.0, top.Confidence)
	for _, c := range batch.Candidates[1:] {
		assert.LessOrEqual(t, c.Scores.Composite, top.Scores.Composite)
	}
}

func TestUltimateNoMatchesReturnsEmpty(t *testing.T) {
	backend := &fakeBackend{catalog: &core.Catalog{}}
	o := NewOrchestrator(backend, nil)

	batch, err := o.RecommendUltimate(context.Background(), Request{Description: "무의미한 질의"})

	require.NoError(t, err)
	assert.Empty(t, batch.Candidates)
	assert.Equal(t, 0, batch.TotalCandidates)
}

func TestRecommendEnsureFailureSurfaces(t *testing.T) {
	backend := testBackend()
	backend.ensureErr = fmt.Errorf("%w: sources unreadable", core.ErrDataIntegrity)
	o := NewOrchestrator(backend, nil)

	_, err := o.Recommend(context.Background(), Request{Description: "전구"})

	assert.ErrorIs(t, err, core.ErrDataIntegrity)
}
