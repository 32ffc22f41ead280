package core

import "time"

// Provenance records which source tables contributed to a catalog row.
// Values combine as bit flags.
type Provenance uint8

const (
	// SourcePrimary is the base tariff classification table.
	SourcePrimary Provenance = 1 << iota
	// SourceStandard is the standard product-name table.
	SourceStandard
	// SourceNotes is the supplementary tariff-notes table.
	SourceNotes
)

// Has reports whether p includes the given source flag.
func (p Provenance) Has(src Provenance) bool {
	return p&src != 0
}

// String returns a human-readable tag like "primary+standard".
func (p Provenance) String() string {
	out := ""
	if p.Has(SourcePrimary) {
		out = "primary"
	}
	if p.Has(SourceStandard) {
		if out != "" {
			out += "+"
		}
		out += "standard"
	}
	if p.Has(SourceNotes) {
		if out != "" {
			out += "+"
		}
		out += "notes"
	}
	if out == "" {
		out = "unknown"
	}
	return out
}

// ClassificationRecord is one row of the integrated catalog.
// Key is always exactly 10 digits, right-padded with '0'.
// FinalText is never empty after integration.
type ClassificationRecord struct {
	Key         string
	NameKo      string
	NameEn      string
	Description string
	FinalText   string
	Provenance  Provenance
	Chapter     string // first 2 digits of Key
	Heading     string // first 4 digits
	Subheading  string // first 6 digits
}

// RestorePrefixes recomputes the hierarchical prefix fields from Key.
// Used when a loaded snapshot predates the prefix columns.
func (r *ClassificationRecord) RestorePrefixes() {
	if len(r.Key) < 10 {
		return
	}
	r.Chapter = r.Key[:2]
	r.Heading = r.Key[:4]
	r.Subheading = r.Key[:6]
}

// Catalog is the integrated, code-keyed classification catalog.
// It is the single source of truth for index building and search.
type Catalog struct {
	Records []ClassificationRecord

	// StandardNames maps normalized standard product names to codes,
	// used for direct-match lookup at query time.
	StandardNames map[string]string

	// ChapterDescriptions maps 2-digit chapter prefixes to a short
	// chapter-level description, used to backfill empty row text.
	ChapterDescriptions map[string]string
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// ByKey returns the record with the given key, or nil.
func (c *Catalog) ByKey(key string) *ClassificationRecord {
	for i := range c.Records {
		if c.Records[i].Key == key {
			return &c.Records[i]
		}
	}
	return nil
}

// MatchType labels how a candidate was produced.
type MatchType string

const (
	MatchHybrid      MatchType = "hybrid"
	MatchDirect      MatchType = "direct"
	MatchLLMProposal MatchType = "llm_proposal"
	MatchLLMStub     MatchType = "llm_stub"
	MatchPromoted    MatchType = "promoted"
)

// ScoreSet carries the component scores of a candidate.
type ScoreSet struct {
	Lexical   float64
	Semantic  float64
	Hybrid    float64
	External  float64 // LLM proposal/re-rank contribution, 0 when absent
	Composite float64
}

// Candidate is a ranked recommendation produced for a single request.
// Candidates never alias into cached state; they are per-request copies.
type Candidate struct {
	Code          string
	NameKo        string
	NameEn        string
	Description   string
	Scores        ScoreSet
	MatchType     MatchType
	Provenance    Provenance
	Confidence    float64 // normalized to [0,1]
	Justification string
}

// Method identifies which recommendation path produced a batch.
type Method string

const (
	MethodBasic    Method = "basic"
	MethodUltimate Method = "ultimate"
)

// RecommendationBatch is the ranked result of one recommendation request.
type RecommendationBatch struct {
	Candidates      []Candidate
	Query           string
	ExpandedQuery   string
	BoostedChapters []string
	BoostedHeadings []string
	TotalCandidates int
	Method          Method
	Elapsed         time.Duration
	StagesDegraded  []string
	CreatedAt       time.Time
}
