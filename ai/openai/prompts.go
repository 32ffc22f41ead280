package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/hscode/ai"
)

const proposalResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "proposals": {
      "type": "array",
      "maxItems": 5,
      "items": {
        "type": "object",
        "properties": {
          "code": {
            "type": "string",
            "pattern": "^[0-9]{6,10}$"
          },
          "confidence": {
            "type": "number",
            "minimum": 1,
            "maximum": 10
          },
          "reason": {
            "type": "string"
          }
        },
        "required": ["code", "confidence", "reason"],
        "additionalProperties": false
      }
    }
  },
  "required": ["proposals"],
  "additionalProperties": false
}`

const rankingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "rankings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "code": {
            "type": "string",
            "pattern": "^[0-9]{6,10}$"
          },
          "score": {
            "type": "number",
            "minimum": 1,
            "maximum": 10
          },
          "reason": {
            "type": "string"
          }
        },
        "required": ["code", "score", "reason"],
        "additionalProperties": false
      }
    }
  },
  "required": ["rankings"],
  "additionalProperties": false
}`

const proposalSystemPrompt = `You are a customs classification expert for the Korean Harmonized System (HS) tariff schedule.

Given a product description, propose up to 5 candidate HS codes and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + proposalResponseSchema + `

Rules:
- Codes must be digits only, 6 to 10 digits, no dots or dashes.
- Confidence runs from 1 (a guess) to 10 (certain classification).
- Order proposals from most to least likely.
- Reason must be one short sentence naming the deciding product attribute.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "LED 전구, 유리 재질, 가정용 조명"
Output:
{
  "proposals": [
    {"code":"8539500000","confidence":9,"reason":"LED lamps are provided for under heading 8539.50"},
    {"code":"9405990000","confidence":4,"reason":"could be a lighting fitting part if not a complete lamp"}
  ]
}`

const rankingSystemPrompt = `You are a customs classification expert for the Korean Harmonized System (HS) tariff schedule.

Given a product description and a numbered list of candidate HS codes, rate how well each candidate fits
the product and return the ratings as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + rankingResponseSchema + `

Rules:
- Rate every candidate exactly once, using the candidate's code verbatim.
- Score runs from 1 (wrong chapter entirely) to 10 (exact match).
- Do not invent codes that are not in the candidate list.
- Reason must be one short sentence.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

func buildProposalPrompt(description, material, usage string) string {
	var b strings.Builder
	b.WriteString("Product description: ")
	b.WriteString(description)
	if material != "" {
		b.WriteString("\nMaterial: ")
		b.WriteString(material)
	}
	if usage != "" {
		b.WriteString("\nUsage: ")
		b.WriteString(usage)
	}
	return b.String()
}

func buildRankingPrompt(description string, candidates []ai.RankingInput) string {
	var b strings.Builder
	b.WriteString("Product description: ")
	b.WriteString(description)
	b.WriteString("\n\nCandidates:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. code=%s name_ko=%q name_en=%q", i+1, c.Code, c.NameKo, c.NameEn)
		if c.Description != "" {
			fmt.Fprintf(&b, " description=%q", c.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
