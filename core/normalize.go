package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCode reduces a raw classification code to its canonical 10-digit
// key: non-digits stripped, right-padded with '0', truncated past 10.
// Returns "" when no digits remain.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) >= 10 {
		return digits[:10]
	}
	return digits + strings.Repeat("0", 10-len(digits))
}

// NormalizeText canonicalizes free text for matching: NFKC normalization,
// whitespace collapse, lowercase.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(norm.NFKC.String(s))
}

// Clamp01 bounds v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
