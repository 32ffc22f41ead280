// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
	"github.com/wizenheimer/comet"
	"golang.org/x/sync/errgroup"
)

// Score bonuses applied multiplicatively after blending. They stack.
const (
	directMatchBonus    = 2.0
	standardSourceBonus = 1.3
	chapterBoostBonus   = 1.5
	headingBoostBonus   = 2.0
	negativePenalty     = 0.2
)

const embedBatchSize = 32

// Match is one ranked catalog row with its component scores.
type Match struct {
	Record      core.ClassificationRecord
	Lexical     float64
	Semantic    float64
	Hybrid      float64
	DirectMatch bool
}

// Result is the outcome of one search call.
type Result struct {
	Matches         []Match
	ExpandedQuery   string
	BoostedChapters []string
	BoostedHeadings []string
	LexicalOnly     bool
}

// IndexStats summarizes the fitted index for cache persistence.
type IndexStats struct {
	Vocabulary map[string]int
	DocCount   int
	AvgDocLen  float64
	VectorDim  int
}

// Engine answers ranked hybrid queries over the integrated catalog. An
// engine whose index has been built is read-only and safe for concurrent
// queries; BuildIndex must not run concurrently with Search.
type Engine struct {
	catalog    *core.Catalog
	embedder   ai.Embedder
	categories []Category
	maxResults int
	poolSize   int
	logger     *slog.Logger

	bm25    *comet.BM25SearchIndex
	vectors [][]float32
	stats   IndexStats
	built   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithCategories replaces the built-in synonym/category dictionary.
func WithCategories(categories []Category) Option {
	return func(e *Engine) {
		e.categories = categories
	}
}

// WithMaxResults bounds the result list length. Default is 50.
func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// WithPoolSize sets the worker pool size used for embedding the catalog.
// Default is half the CPU count, minimum 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.poolSize = size
		}
	}
}

// NewEngine creates a search engine over the given catalog.
func NewEngine(catalog *core.Catalog, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil catalog", core.ErrValidation)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: nil embedder", core.ErrValidation)
	}
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	e := &Engine{
		catalog:    catalog,
		embedder:   embedder,
		categories: DefaultCategories(),
		maxResults: 50,
		poolSize:   poolSize,
		logger:     slog.Default().With("component", "search-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// BuildIndex fits the lexical index and encodes every catalog row into the
// dense matrix. It must rerun whenever the catalog changes. The lexical fit
// and the embedding encode run concurrently; row batches are encoded on a
// worker pool.
func (e *Engine) BuildIndex(ctx context.Context) error {
	rows := len(e.catalog.Records)
	vectors := make([][]float32, rows)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.fitLexical()
	})

	g.Go(func() error {
		pool, err := ants.NewPool(e.poolSize)
		if err != nil {
			return err
		}
		defer pool.Release()

		var wg sync.WaitGroup
		var mu sync.Mutex
		var encodeErr error

		for start := 0; start < rows; start += embedBatchSize {
			end := start + embedBatchSize
			if end > rows {
				end = rows
			}
			start, end := start, end
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				texts := make([]string, end-start)
				for i := start; i < end; i++ {
					texts[i-start] = e.catalog.Records[i].FinalText
				}
				vecs, err := e.embedder.EmbedTexts(gctx, texts)
				if err != nil {
					mu.Lock()
					if encodeErr == nil {
						encodeErr = err
					}
					mu.Unlock()
					return
				}
				for i, v := range vecs {
					vectors[start+i] = v
				}
			})
			if submitErr != nil {
				wg.Done()
				wg.Wait()
				return submitErr
			}
		}
		wg.Wait()
		if encodeErr != nil {
			return fmt.Errorf("%w: encoding catalog: %v", core.ErrExternalService, encodeErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	e.vectors = vectors
	if rows > 0 && len(vectors[0]) > 0 {
		e.stats.VectorDim = len(vectors[0])
	}
	e.built = true
	e.logger.Info("index built", "rows", rows, "vectorDim", e.stats.VectorDim, "vocabulary", len(e.stats.Vocabulary))
	return nil
}

// RestoreIndex adopts previously persisted embeddings and refits the lexical
// index from the catalog text, skipping the embedding service entirely.
func (e *Engine) RestoreIndex(vectors [][]float32) error {
	if len(vectors) != len(e.catalog.Records) {
		return fmt.Errorf("%w: %d vectors for %d rows", core.ErrCacheCorruption, len(vectors), len(e.catalog.Records))
	}
	if err := e.fitLexical(); err != nil {
		return err
	}
	e.vectors = vectors
	if len(vectors) > 0 {
		e.stats.VectorDim = len(vectors[0])
	}
	e.built = true
	return nil
}

// fitLexical builds the BM25 index and the vocabulary statistics.
func (e *Engine) fitLexical() error {
	idx := comet.NewBM25SearchIndex()
	vocab := make(map[string]int)
	totalLen := 0
	for i := range e.catalog.Records {
		text := core.NormalizeText(e.catalog.Records[i].FinalText)
		if err := idx.Add(uint32(i), text); err != nil {
			return fmt.Errorf("lexical index row %d: %w", i, err)
		}
		terms := tokenize(text)
		totalLen += len(terms)
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			if !seen[term] {
				seen[term] = true
				vocab[term]++
			}
		}
	}
	e.bm25 = idx
	e.stats.Vocabulary = vocab
	e.stats.DocCount = len(e.catalog.Records)
	if e.stats.DocCount > 0 {
		e.stats.AvgDocLen = float64(totalLen) / float64(e.stats.DocCount)
	}
	return nil
}

// Vectors returns the dense row vectors of the built index, in catalog row
// order. The slice is shared, not copied; callers must not mutate it.
func (e *Engine) Vectors() [][]float32 {
	return e.vectors
}

// Stats returns the fitted index statistics.
func (e *Engine) Stats() IndexStats {
	return e.stats
}

// Ready reports whether an index is available for queries.
func (e *Engine) Ready() bool {
	return e != nil && e.built
}

// Search runs the full hybrid pipeline: expansion, direct-match lookup,
// dynamically weighted lexical/semantic blending, category boosts, the
// negative-keyword penalty, the dominant-chapter outlier filter, and
// truncation. Failures inside the pipeline degrade to a plain lexical-only
// search; this method never propagates pipeline errors to the caller.
func (e *Engine) Search(ctx context.Context, query, material, usage string) (*Result, error) {
	if !e.Ready() {
		return nil, core.ErrIndexNotBuilt
	}
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}

	full := query
	for _, extra := range []string{material, usage} {
		if strings.TrimSpace(extra) != "" {
			full += " " + extra
		}
	}

	res, err := e.hybridSearch(ctx, query, full)
	if err != nil {
		e.logger.Warn("hybrid pipeline degraded, falling back to lexical-only search", "query", query, "err", err)
		return e.lexicalOnly(full)
	}
	return res, nil
}

func (e *Engine) hybridSearch(ctx context.Context, rawQuery, fullQuery string) (*Result, error) {
	expanded, category := e.ExpandQuery(fullQuery)

	var boostChapters, boostHeadings, negatives []string
	if category != nil {
		boostChapters = category.BoostChapters
		boostHeadings = category.BoostHeadings
		negatives = category.NegativeKeywords
	}

	directCodes := e.directMatches(fullQuery, expanded)
	lexWeight, semWeight := blendWeights(len(strings.Fields(core.NormalizeText(rawQuery))))

	lexScores, err := e.lexicalScores(expanded)
	if err != nil {
		return nil, err
	}
	semScores, err := e.semanticScores(ctx, fullQuery, expanded)
	if err != nil {
		return nil, err
	}

	chapterSet := toSet(boostChapters)
	headingSet := toSet(boostHeadings)

	matches := make([]Match, 0, len(e.catalog.Records))
	for i := range e.catalog.Records {
		rec := &e.catalog.Records[i]
		lex := lexScores[i]
		sem := semScores[i]
		hybrid := lexWeight*lex + semWeight*sem
		if hybrid <= 0 {
			continue
		}

		direct := directCodes[rec.Key]
		if direct {
			hybrid *= directMatchBonus
		}
		if rec.Provenance.Has(core.SourceStandard) {
			hybrid *= standardSourceBonus
		}
		if chapterSet[rec.Chapter] {
			hybrid *= chapterBoostBonus
		}
		if headingSet[rec.Heading] {
			hybrid *= headingBoostBonus
		}
		if hasNegativeKeyword(rec, negatives) {
			hybrid *= negativePenalty
		}

		matches = append(matches, Match{
			Record:      *rec,
			Lexical:     lex,
			Semantic:    sem,
			Hybrid:      hybrid,
			DirectMatch: direct,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Hybrid > matches[j].Hybrid
	})
	matches = filterDominantChapters(matches)
	if len(matches) > e.maxResults {
		matches = matches[:e.maxResults]
	}

	return &Result{
		Matches:         matches,
		ExpandedQuery:   expanded,
		BoostedChapters: boostChapters,
		BoostedHeadings: boostHeadings,
	}, nil
}

// lexicalOnly is the degraded path: BM25 scores alone, no expansion, no
// boosts, no semantic component.
func (e *Engine) lexicalOnly(query string) (*Result, error) {
	lexScores, err := e.lexicalScores(query)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, 16)
	for i, lex := range lexScores {
		if lex <= 0 {
			continue
		}
		matches = append(matches, Match{
			Record:  e.catalog.Records[i],
			Lexical: lex,
			Hybrid:  lex,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Hybrid > matches[j].Hybrid
	})
	if len(matches) > e.maxResults {
		matches = matches[:e.maxResults]
	}
	return &Result{Matches: matches, ExpandedQuery: query, LexicalOnly: true}, nil
}

// directMatches collects codes whose standard name matches the raw or
// expanded query by substring in either direction.
func (e *Engine) directMatches(rawQuery, expandedQuery string) map[string]bool {
	out := make(map[string]bool)
	raw := core.NormalizeText(rawQuery)
	exp := core.NormalizeText(expandedQuery)
	for name, code := range e.catalog.StandardNames {
		if name == "" {
			continue
		}
		if strings.Contains(raw, name) || strings.Contains(name, raw) ||
			strings.Contains(exp, name) || strings.Contains(name, exp) {
			out[code] = true
		}
	}
	return out
}

// lexicalScores returns one BM25 score per catalog row, normalized to [0,1]
// by the best score. Rows the query does not touch score 0.
func (e *Engine) lexicalScores(query string) ([]float64, error) {
	scores := make([]float64, len(e.catalog.Records))
	q := core.NormalizeText(query)
	if q == "" || len(scores) == 0 {
		return scores, nil
	}
	results, err := e.bm25.NewSearch().
		WithQuery(q).
		WithK(len(e.catalog.Records)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	maxScore := 0.0
	for _, r := range results {
		if float64(r.Score) > maxScore {
			maxScore = float64(r.Score)
		}
	}
	if maxScore == 0 {
		return scores, nil
	}
	for _, r := range results {
		idx := int(r.Id)
		if idx < 0 || idx >= len(scores) {
			continue
		}
		scores[idx] = float64(r.Score) / maxScore
	}
	return scores, nil
}

// semanticScores returns per-row cosine similarity averaged across the
// original and expanded query encodings.
func (e *Engine) semanticScores(ctx context.Context, query, expanded string) ([]float64, error) {
	queries := []string{query}
	if expanded != query {
		queries = append(queries, expanded)
	}
	encodings, err := e.embedder.EmbedTexts(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrExternalService, err)
	}

	scores := make([]float64, len(e.catalog.Records))
	for i := range e.vectors {
		total := 0.0
		for _, enc := range encodings {
			total += cosineSimilarity(enc, e.vectors[i])
		}
		if len(encodings) > 0 {
			scores[i] = total / float64(len(encodings))
		}
		if scores[i] < 0 {
			scores[i] = 0
		}
	}
	return scores, nil
}

func hasNegativeKeyword(rec *core.ClassificationRecord, negatives []string) bool {
	if len(negatives) == 0 {
		return false
	}
	name := core.NormalizeText(rec.NameKo + " " + rec.NameEn)
	for _, neg := range negatives {
		if neg == "" {
			continue
		}
		if strings.Contains(name, core.NormalizeText(neg)) {
			return true
		}
	}
	return false
}

// filterDominantChapters restricts results to chapters that clearly dominate
// the top of the ranking: a chapter holding at least 2 of the top 10 whose
// mean score exceeds 1.5x the mean of the remaining top-10 rows. Applies
// only when at least 10 results exist.
func filterDominantChapters(matches []Match) []Match {
	if len(matches) < 10 {
		return matches
	}
	top := matches[:10]

	byChapter := make(map[string][]float64)
	for _, m := range top {
		byChapter[m.Record.Chapter] = append(byChapter[m.Record.Chapter], m.Hybrid)
	}

	dominant := make(map[string]bool)
	for chapter, scores := range byChapter {
		if len(scores) < 2 {
			continue
		}
		var rest []float64
		for other, otherScores := range byChapter {
			if other != chapter {
				rest = append(rest, otherScores...)
			}
		}
		if len(rest) == 0 {
			continue
		}
		if mean(scores) > 1.5*mean(rest) {
			dominant[chapter] = true
		}
	}
	if len(dominant) == 0 {
		return matches
	}

	filtered := make([]Match, 0, len(matches))
	for _, m := range matches {
		if dominant[m.Record.Chapter] {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	return out
}
