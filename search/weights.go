package search

// blendWeights picks the lexical/semantic blend weights from the query word
// count. Short queries behave like keyword lookups; medium-length natural
// language queries benefit most from semantics; very long queries regress
// toward lexical because they resemble keyword lists.
func blendWeights(wordCount int) (lexical, semantic float64) {
	switch {
	case wordCount <= 2:
		return 0.7, 0.3
	case wordCount >= 8:
		return 0.6, 0.4
	case wordCount >= 5:
		return 0.4, 0.6
	default:
		return 0.5, 0.5
	}
}
