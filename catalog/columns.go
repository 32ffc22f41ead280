package catalog

import "strings"

// ColumnCandidates defines possible header names for auto-detecting columns
// in the tabular sources. Matching is exact first, then keyword-based.
type ColumnCandidates struct {
	Code        []string
	NameKo      []string
	NameEn      []string
	Description []string
	ValidFrom   []string
	ValidTo     []string
}

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Code:        []string{"hs부호", "hs코드", "hscode", "hs_code", "세번부호", "품목번호", "code"},
		NameKo:      []string{"한글품목명", "품명", "표준품명", "한글명", "name_ko", "korean_name"},
		NameEn:      []string{"영문품목명", "영문명", "name_en", "english_name"},
		Description: []string{"품목설명", "해설", "비고", "description", "note", "remarks"},
		ValidFrom:   []string{"적용시작일", "시작일", "valid_from", "start_date"},
		ValidTo:     []string{"적용종료일", "종료일", "valid_to", "end_date"},
	}
}

// findColumn locates a header by candidate list: exact normalized match wins,
// then the first header containing any candidate as a substring.
// Returns -1 when no header qualifies.
func findColumn(headers []string, candidates []string) int {
	normed := make([]string, len(headers))
	for i, h := range headers {
		normed[i] = normalizeHeader(h)
	}
	for _, cand := range candidates {
		for i, h := range normed {
			if h == cand {
				return i
			}
		}
	}
	for _, cand := range candidates {
		for i, h := range normed {
			if strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.TrimPrefix(h, "\uFEFF") // Excel exports carry a BOM
	return h
}
