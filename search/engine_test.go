package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/hscode/ai/mock"
	"github.com/poiesic/hscode/core"
)

func testRecord(key, nameKo, nameEn string, prov core.Provenance) core.ClassificationRecord {
	rec := core.ClassificationRecord{
		Key:        key,
		NameKo:     nameKo,
		NameEn:     nameEn,
		FinalText:  nameKo + " " + nameEn,
		Provenance: prov,
	}
	rec.RestorePrefixes()
	return rec
}

func testCatalog() *core.Catalog {
	return &core.Catalog{
		Records: []core.ClassificationRecord{
			testRecord("8539500000", "LED 전구 조명기기", "LED lamps", core.SourcePrimary|core.SourceStandard),
			testRecord("9405990000", "조명기구 부분품", "parts of luminaires", core.SourcePrimary),
			testRecord("6403990000", "가죽 신발", "leather footwear", core.SourcePrimary),
			testRecord("3304990000", "기초 화장품 크림", "skin care cream", core.SourcePrimary),
			testRecord("1806900000", "초콜릿 과자", "chocolate confectionery", core.SourcePrimary),
		},
		StandardNames: map[string]string{
			"led 전구": "8539500000",
		},
	}
}

func builtEngine(t *testing.T, cat *core.Catalog, embedder *mock.MockEmbedder) *Engine {
	t.Helper()
	e, err := NewEngine(cat, embedder, WithPoolSize(1))
	require.NoError(t, err)
	require.NoError(t, e.BuildIndex(context.Background()))
	return e
}

func TestSearchGoldenPath(t *testing.T) {
	e := builtEngine(t, testCatalog(), mock.NewMockEmbedder())

	res, err := e.Search(context.Background(), "LED 전구", "", "")

	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	assert.False(t, res.LexicalOnly)

	top3 := res.Matches
	if len(top3) > 3 {
		top3 = top3[:3]
	}
	found := false
	for _, m := range top3 {
		if m.Record.Key == "8539500000" {
			found = true
		}
	}
	assert.True(t, found, "LED lamp row must rank in the top 3")
	assert.Equal(t, "8539500000", res.Matches[0].Record.Key)
	assert.True(t, res.Matches[0].DirectMatch)
	assert.Contains(t, res.BoostedHeadings, "8539")
}

func TestSearchRequiresBuiltIndex(t *testing.T) {
	e, err := NewEngine(testCatalog(), mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = e.Search(context.Background(), "전구", "", "")

	assert.ErrorIs(t, err, core.ErrIndexNotBuilt)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	e := builtEngine(t, testCatalog(), mock.NewMockEmbedder())

	_, err := e.Search(context.Background(), "   ", "", "")

	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestSearchFallsBackWhenEmbedderFails(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	e := builtEngine(t, testCatalog(), embedder)

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	res, err := e.Search(context.Background(), "LED 전구", "", "")

	require.NoError(t, err)
	assert.True(t, res.LexicalOnly)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, "8539500000", res.Matches[0].Record.Key)
	assert.Zero(t, res.Matches[0].Semantic)
}

func TestDirectMatchRaisesScore(t *testing.T) {
	withNames := builtEngine(t, testCatalog(), mock.NewMockEmbedder())

	plain := testCatalog()
	plain.StandardNames = nil
	withoutNames := builtEngine(t, plain, mock.NewMockEmbedder())

	boosted, err := withNames.Search(context.Background(), "LED 전구", "", "")
	require.NoError(t, err)
	baseline, err := withoutNames.Search(context.Background(), "LED 전구", "", "")
	require.NoError(t, err)

	boostedScore := scoreFor(boosted, "8539500000")
	baselineScore := scoreFor(baseline, "8539500000")
	require.NotZero(t, baselineScore)
	assert.Greater(t, boostedScore, baselineScore)
}

func scoreFor(res *Result, key string) float64 {
	for _, m := range res.Matches {
		if m.Record.Key == key {
			return m.Hybrid
		}
	}
	return 0
}

func TestSearchAppendsMaterialAndUsage(t *testing.T) {
	e := builtEngine(t, testCatalog(), mock.NewMockEmbedder())

	res, err := e.Search(context.Background(), "전구", "유리", "가정용 조명")

	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, "8539500000", res.Matches[0].Record.Key)
}

func TestRestoreIndexRoundTrip(t *testing.T) {
	cat := testCatalog()
	built := builtEngine(t, cat, mock.NewMockEmbedder())

	restored, err := NewEngine(cat, mock.NewMockEmbedder())
	require.NoError(t, err)
	require.NoError(t, restored.RestoreIndex(built.Vectors()))

	assert.True(t, restored.Ready())
	res, err := restored.Search(context.Background(), "LED 전구", "", "")
	require.NoError(t, err)
	assert.Equal(t, "8539500000", res.Matches[0].Record.Key)
}

func TestRestoreIndexRowMismatch(t *testing.T) {
	e, err := NewEngine(testCatalog(), mock.NewMockEmbedder())
	require.NoError(t, err)

	err = e.RestoreIndex(make([][]float32, 2))

	assert.ErrorIs(t, err, core.ErrCacheCorruption)
	assert.False(t, e.Ready())
}

func dominantMatch(chapter string, score float64) Match {
	rec := testRecord(chapter+"01000000", "item", "item", core.SourcePrimary)
	return Match{Record: rec, Hybrid: score}
}

func TestFilterDominantChaptersKeepsDominantOnly(t *testing.T) {
	matches := []Match{
		dominantMatch("85", 10),
		dominantMatch("85", 9),
		dominantMatch("64", 1),
		dominantMatch("33", 1),
		dominantMatch("18", 1),
		dominantMatch("61", 1),
		dominantMatch("95", 1),
		dominantMatch("94", 1),
		dominantMatch("42", 1),
		dominantMatch("70", 1),
		dominantMatch("64", 0.5),
	}

	filtered := filterDominantChapters(matches)

	require.Len(t, filtered, 2)
	for _, m := range filtered {
		assert.Equal(t, "85", m.Record.Chapter)
	}
}

func TestFilterDominantChaptersNoDominance(t *testing.T) {
	matches := make([]Match, 0, 12)
	chapters := []string{"85", "85", "64", "64", "33", "33", "18", "18", "61", "61", "95", "95"}
	for _, ch := range chapters {
		matches = append(matches, dominantMatch(ch, 1.0))
	}

	filtered := filterDominantChapters(matches)

	assert.Len(t, filtered, len(matches))
}

func TestFilterDominantChaptersSkipsSmallResultSets(t *testing.T) {
	matches := []Match{
		dominantMatch("85", 10),
		dominantMatch("85", 9),
		dominantMatch("64", 1),
	}

	filtered := filterDominantChapters(matches)

	assert.Len(t, filtered, len(matches))
}
