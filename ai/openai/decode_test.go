package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProposalsValid(t *testing.T) {
	raw := `{"proposals":[
		{"code":"8539500000","confidence":9,"reason":"LED lamp heading"},
		{"code":"9405.99-0000","confidence":4,"reason":"lighting fitting part"}
	]}`

	parsed := decodeProposals(raw)

	require.True(t, parsed.OK, parsed.Reason)
	require.Len(t, parsed.Proposals, 2)
	assert.Equal(t, "8539500000", parsed.Proposals[0].Code)
	assert.Equal(t, 9.0, parsed.Proposals[0].Confidence)
	assert.Equal(t, "9405990000", parsed.Proposals[1].Code, "separators stripped")
}

func TestDecodeProposalsCodeFences(t *testing.T) {
	raw := "```json\n{\"proposals\":[{\"code\":\"8539500000\",\"confidence\":8,\"reason\":\"ok\"}]}\n```"

	parsed := decodeProposals(raw)

	require.True(t, parsed.OK, parsed.Reason)
	assert.Equal(t, "8539500000", parsed.Proposals[0].Code)
}

func TestDecodeProposalsMalformed(t *testing.T) {
	parsed := decodeProposals(`{"proposals": [`)

	assert.False(t, parsed.OK)
	assert.Contains(t, parsed.Reason, "malformed JSON")
	assert.Empty(t, parsed.Proposals)
}

func TestDecodeProposalsEmptyList(t *testing.T) {
	parsed := decodeProposals(`{"proposals":[]}`)

	assert.False(t, parsed.OK)
	assert.Contains(t, parsed.Reason, "no proposals")
}

func TestDecodeProposalsDropsNonNumericCodes(t *testing.T) {
	raw := `{"proposals":[
		{"code":"unknown","confidence":7,"reason":"guess"},
		{"code":"8539500000","confidence":6,"reason":"ok"}
	]}`

	parsed := decodeProposals(raw)

	require.True(t, parsed.OK)
	require.Len(t, parsed.Proposals, 1)
	assert.Equal(t, "8539500000", parsed.Proposals[0].Code)
}

func TestDecodeProposalsClampsConfidence(t *testing.T) {
	raw := `{"proposals":[
		{"code":"8539500000","confidence":42,"reason":"overconfident"},
		{"code":"9405990000","confidence":0,"reason":"underconfident"}
	]}`

	parsed := decodeProposals(raw)

	require.True(t, parsed.OK)
	assert.Equal(t, 10.0, parsed.Proposals[0].Confidence)
	assert.Equal(t, 1.0, parsed.Proposals[1].Confidence)
}

func TestDecodeProposalsCapsAtFive(t *testing.T) {
	raw := `{"proposals":[
		{"code":"8539500000","confidence":9,"reason":"a"},
		{"code":"9405990000","confidence":8,"reason":"b"},
		{"code":"8541100000","confidence":7,"reason":"c"},
		{"code":"9405100000","confidence":6,"reason":"d"},
		{"code":"8539900000","confidence":5,"reason":"e"},
		{"code":"8539290000","confidence":4,"reason":"f"}
	]}`

	parsed := decodeProposals(raw)

	require.True(t, parsed.OK)
	assert.Len(t, parsed.Proposals, 5)
}

func TestDecodeRankingsValid(t *testing.T) {
	raw := `{"rankings":[
		{"code":"8539500000","score":9.5,"reason":"exact match"},
		{"code":"9405990000","score":3,"reason":"wrong heading"}
	]}`

	parsed := decodeRankings(raw)

	require.True(t, parsed.OK, parsed.Reason)
	require.Len(t, parsed.Rankings, 2)
	assert.Equal(t, 9.5, parsed.Rankings[0].Score)
}

func TestDecodeRankingsMalformed(t *testing.T) {
	parsed := decodeRankings("the best code is 8539500000")

	assert.False(t, parsed.OK)
	assert.Contains(t, parsed.Reason, "malformed JSON")
}
