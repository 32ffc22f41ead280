package search

import (
	"strings"

	"github.com/poiesic/hscode/core"
)

// matchCategory returns the FIRST category whose keyword list intersects the
// query, scanning categories in their fixed order. Matching is
// case-insensitive substring in either direction. A query spanning several
// categories still receives exactly one match.
func matchCategory(categories []Category, query string) *Category {
	q := core.NormalizeText(query)
	if q == "" {
		return nil
	}
	for i := range categories {
		for _, kw := range categories[i].Keywords {
			if keywordMatches(q, kw) {
				return &categories[i]
			}
		}
	}
	return nil
}

func keywordMatches(normalizedQuery, keyword string) bool {
	kw := core.NormalizeText(keyword)
	if kw == "" {
		return false
	}
	return strings.Contains(normalizedQuery, kw) || strings.Contains(kw, normalizedQuery)
}

// ExpandQuery appends the matched category's unseen keywords to the query.
// Returns the (possibly unchanged) query and the matched category, nil when
// no category matched.
func (e *Engine) ExpandQuery(query string) (string, *Category) {
	cat := matchCategory(e.categories, query)
	if cat == nil {
		return query, nil
	}
	q := core.NormalizeText(query)
	added := make([]string, 0, len(cat.Keywords))
	for _, kw := range cat.Keywords {
		if !strings.Contains(q, core.NormalizeText(kw)) {
			added = append(added, kw)
		}
	}
	if len(added) == 0 {
		return query, cat
	}
	return query + " " + strings.Join(added, " "), cat
}

// CategoryBoost returns the chapter and heading boost lists of the matched
// category, or empty lists when no category matched.
func (e *Engine) CategoryBoost(query string) (chapters, headings []string) {
	cat := matchCategory(e.categories, query)
	if cat == nil {
		return nil, nil
	}
	return cat.BoostChapters, cat.BoostHeadings
}
