package openai

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/hscode/ai"
)

// ParsedProposals is the tagged result of decoding a proposal response.
// Downstream logic branches on OK only, never on response shape.
type ParsedProposals struct {
	OK        bool
	Reason    string
	Proposals []ai.CodeProposal
}

// ParsedRankings is the tagged result of decoding a ranking response.
type ParsedRankings struct {
	OK       bool
	Reason   string
	Rankings []ai.CodeRanking
}

// Wire shapes expected from the model.
type proposalWire struct {
	Proposals []struct {
		Code       string  `json:"code"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	} `json:"proposals"`
}

type rankingWire struct {
	Rankings []struct {
		Code   string  `json:"code"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"rankings"`
}

const maxProposals = 5

// decodeProposals strictly decodes and validates a proposal response.
func decodeProposals(raw string) ParsedProposals {
	var wire proposalWire
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &wire); err != nil {
		return ParsedProposals{Reason: "malformed JSON: " + err.Error()}
	}
	if len(wire.Proposals) == 0 {
		return ParsedProposals{Reason: "no proposals in response"}
	}

	out := make([]ai.CodeProposal, 0, maxProposals)
	for _, p := range wire.Proposals {
		code := digitsOnly(p.Code)
		if code == "" {
			continue
		}
		out = append(out, ai.CodeProposal{
			Code:       code,
			Confidence: clampRating(p.Confidence),
			Reason:     strings.TrimSpace(p.Reason),
		})
		if len(out) == maxProposals {
			break
		}
	}
	if len(out) == 0 {
		return ParsedProposals{Reason: "no usable codes in response"}
	}
	return ParsedProposals{OK: true, Proposals: out}
}

// decodeRankings strictly decodes and validates a ranking response.
func decodeRankings(raw string) ParsedRankings {
	var wire rankingWire
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &wire); err != nil {
		return ParsedRankings{Reason: "malformed JSON: " + err.Error()}
	}
	if len(wire.Rankings) == 0 {
		return ParsedRankings{Reason: "no rankings in response"}
	}

	out := make([]ai.CodeRanking, 0, len(wire.Rankings))
	for _, r := range wire.Rankings {
		code := digitsOnly(r.Code)
		if code == "" {
			continue
		}
		out = append(out, ai.CodeRanking{
			Code:   code,
			Score:  clampRating(r.Score),
			Reason: strings.TrimSpace(r.Reason),
		})
	}
	if len(out) == 0 {
		return ParsedRankings{Reason: "no usable codes in response"}
	}
	return ParsedRankings{OK: true, Rankings: out}
}

// stripCodeFences removes markdown code fences some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// digitsOnly keeps the digit characters of a code, dropping separators the
// model may insert (e.g. "8539.50-0000").
func digitsOnly(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// clampRating bounds a model rating to the documented 1-10 range.
func clampRating(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
