package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/hscode/ai/mock"
	"github.com/poiesic/hscode/core"
)

func expansionEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(&core.Catalog{
		Records: []core.ClassificationRecord{
			testRecord("8539500000", "LED 전구", "LED lamps", core.SourcePrimary),
		},
	}, mock.NewMockEmbedder())
	require.NoError(t, err)
	return e
}

func TestExpandQueryAddsCategoryKeywords(t *testing.T) {
	e := expansionEngine(t)

	expanded, cat := e.ExpandQuery("LED 전구")

	require.NotNil(t, cat)
	assert.Equal(t, "조명기기", cat.Name)
	assert.True(t, strings.HasPrefix(expanded, "LED 전구"), "original query kept as prefix")
	assert.Contains(t, expanded, "램프")
	assert.NotContains(t, strings.TrimPrefix(expanded, "LED 전구"), "전구", "present keywords not re-added")
}

func TestExpandQueryFirstCategoryWins(t *testing.T) {
	e := expansionEngine(t)

	// "led" hits 조명기기 and "인형" hits 완구; only the first category in
	// the fixed order may expand.
	expanded, cat := e.ExpandQuery("led 인형")

	require.NotNil(t, cat)
	assert.Equal(t, "조명기기", cat.Name)
	assert.Contains(t, expanded, "램프")
	assert.NotContains(t, expanded, "보드게임")
}

func TestExpandQueryNoMatch(t *testing.T) {
	e := expansionEngine(t)

	expanded, cat := e.ExpandQuery("굴착기 유압 실린더")

	assert.Nil(t, cat)
	assert.Equal(t, "굴착기 유압 실린더", expanded)
}

func TestCategoryBoost(t *testing.T) {
	e := expansionEngine(t)

	chapters, headings := e.CategoryBoost("형광등 교체")

	assert.Equal(t, []string{"85", "94"}, chapters)
	assert.Equal(t, []string{"8539", "9405"}, headings)
}

func TestCategoryBoostNoMatch(t *testing.T) {
	e := expansionEngine(t)

	chapters, headings := e.CategoryBoost("굴착기")

	assert.Empty(t, chapters)
	assert.Empty(t, headings)
}
