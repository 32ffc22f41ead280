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


package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/core"
	"github.com/poiesic/hscode/search"
)

// Backend supplies the orchestrator with a ready search index and the
// catalog behind it. The engine facade implements it; tests substitute
// lightweight fakes.
type Backend interface {
	// Ensure makes the index ready, loading a cached snapshot or
	// rebuilding from sources as needed.
	Ensure(ctx context.Context) error

	// Search runs a hybrid query against the current index.
	Search(ctx context.Context, query, material, usage string) (*search.Result, error)

	// Catalog returns the integrated catalog backing the current index.
	Catalog() *core.Catalog
}

// Request is one recommendation query.
type Request struct {
	Description string
	Material    string
	Usage       string
	TopK        int  // 1..20, defaults to defaultTopK
	UseLLM      bool // basic mode only: blend an LLM rating into the top results
}

const (
	defaultTopK = 5
	maxTopK     = 20
)

// normalize applies defaults and bounds to the request.
func (r *Request) normalize() {
	if r.TopK <= 0 {
		r.TopK = defaultTopK
	}
	if r.TopK > maxTopK {
		r.TopK = maxTopK
	}
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is required", core.ErrValidation)
	}
	return nil
}

// Orchestrator turns search results and advisor output into ranked
// recommendation batches. All advisor failures degrade the affected stage;
// only validation errors and backend failures surface to the caller.
type Orchestrator struct {
	backend Backend
	advisor ai.Advisor
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "recommend")
	}
}

// NewOrchestrator creates an orchestrator. The advisor may be nil, in which
// case every LLM stage degrades and recommendations are retrieval-only.
func NewOrchestrator(backend Backend, advisor ai.Advisor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		advisor: advisor,
		logger:  slog.Default().With("component", "recommend"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Recommend runs the basic pipeline: hybrid retrieval, an optional LLM
// rating blended into the top results, then formatting.
func (o *Orchestrator) Recommend(ctx context.Context, req Request) (*core.RecommendationBatch, error) {
	start := time.Now()
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := o.backend.Ensure(ctx); err != nil {
		return nil, err
	}

	result, err := o.backend.Search(ctx, req.Description, req.Material, req.Usage)
	if err != nil {
		return nil, err
	}

	candidates := candidatesFromMatches(result.Matches)
	var degraded []string

	if req.UseLLM && o.advisor != nil && len(candidates) > 0 {
		if err := o.blendRatings(ctx, req.Description, candidates); err != nil {
			o.logger.Warn("rating stage degraded", "err", err)
			degraded = append(degraded, "rating")
		}
	}

	batch := o.finalize(candidates, result, req, core.MethodBasic, degraded)
	batch.Elapsed = time.Since(start)
	return batch, nil
}

// basicRatingWeight blends an advisor rating into a hybrid score:
// composite = 0.6*hybrid + 0.4*(rating/10).
const (
	basicHybridWeight = 0.6
	basicRatingWeight = 0.4
)

// blendRatings asks the advisor to rate the current top candidates and folds
// the ratings into their composite scores. Candidates the advisor omits keep
// their retrieval score.
func (o *Orchestrator) blendRatings(ctx context.Context, description string, candidates []core.Candidate) error {
	window := rerankWindow(len(candidates))
	inputs := rankingInputs(candidates[:window])

	rankings, err := o.advisor.RankCandidates(ctx, description, inputs)
	if err != nil {
		return err
	}

	for i := range candidates[:window] {
		c := &candidates[i]
		score, reason, ok := lookupRanking(c.Code, rankings)
		if !ok {
			continue
		}
		c.Scores.External = score / 10
		c.Scores.Composite = basicHybridWeight*c.Scores.Hybrid + basicRatingWeight*(score/10)
		if reason != "" {
			c.Justification = reason
		}
	}
	return nil
}

// finalize sorts, truncates and annotates a candidate set into a batch.
func (o *Orchestrator) finalize(candidates []core.Candidate, result *search.Result, req Request, method core.Method, degraded []string) *core.RecommendationBatch {
	total := len(candidates)
	top := formatCandidates(candidates, req.TopK)

	return &core.RecommendationBatch{
		Candidates:      top,
		Query:           req.Description,
		ExpandedQuery:   result.ExpandedQuery,
		BoostedChapters: result.BoostedChapters,
		BoostedHeadings: result.BoostedHeadings,
		TotalCandidates: total,
		Method:          method,
		StagesDegraded:  degraded,
		CreatedAt:       time.Now(),
	}
}
