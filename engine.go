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


package hscode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/ai/openai"
	"github.com/poiesic/hscode/cache"
	"github.com/poiesic/hscode/catalog"
	"github.com/poiesic/hscode/core"
	"github.com/poiesic/hscode/recommend"
	"github.com/poiesic/hscode/search"
)

// Engine is the top-level facade. It owns the source integrator, the cache
// store, the AI provider and the current search index, and hands the
// orchestrator a consistent view of them.
//
// Rebuilds are serialized; queries read the current index under a read lock
// and keep serving the previous index while a rebuild runs. A partially
// built index is never visible.
type Engine struct {
	sources      catalog.Sources
	store        *cache.Store
	provider     ai.Provider
	aiConfig     *ai.Config
	orchestrator *recommend.Orchestrator
	searchOpts   []search.Option
	logger       *slog.Logger

	rebuildMu sync.Mutex

	mu       sync.RWMutex
	searcher *search.Engine
	catalog  *core.Catalog
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	inMemoryCache bool
	logger        *slog.Logger
	searchOpts    []search.Option
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the configured
// OpenAI-compatible one. Used by tests with the mock provider.
func WithProvider(provider ai.Provider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryCache opens the cache store in memory. Used by tests.
func WithInMemoryCache() Option {
	return func(o *engineOptions) {
		o.inMemoryCache = true
	}
}

// WithEngineLogger sets a custom logger. Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithSearchOptions forwards options to the search engine built on each
// rebuild.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *engineOptions) {
		o.searchOpts = opts
	}
}

// NewEngine opens the cache store and AI provider and wires the
// recommendation orchestrator. The index is not built here; the first
// recommendation, or an explicit Rebuild, makes it ready.
func NewEngine(sources catalog.Sources, cacheDir string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	var storeOpts []cache.Option
	if options.inMemoryCache {
		storeOpts = append(storeOpts, cache.WithInMemory())
	}
	store, err := cache.Open(cacheDir, sources.Paths(), storeOpts...)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	e := &Engine{
		sources:    sources,
		store:      store,
		provider:   provider,
		aiConfig:   options.aiConfig,
		searchOpts: options.searchOpts,
		logger:     options.logger.With("component", "engine"),
	}
	e.orchestrator = recommend.NewOrchestrator(e, provider.Advisor())
	return e, nil
}

// Close releases the AI provider and the cache store.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing cache store", "err", err)
		return err
	}
	return nil
}

// Recommend runs the basic recommendation pipeline.
func (e *Engine) Recommend(ctx context.Context, req recommend.Request) (*core.RecommendationBatch, error) {
	return e.orchestrator.Recommend(ctx, req)
}

// RecommendUltimate runs the five-stage recommendation pipeline.
func (e *Engine) RecommendUltimate(ctx context.Context, req recommend.Request) (*core.RecommendationBatch, error) {
	return e.orchestrator.RecommendUltimate(ctx, req)
}

// Ensure makes the index ready, reusing a valid cached snapshot when one
// exists. It implements recommend.Backend.
func (e *Engine) Ensure(ctx context.Context) error {
	e.mu.RLock()
	ready := e.searcher != nil && e.searcher.Ready()
	e.mu.RUnlock()
	if ready {
		return nil
	}
	return e.Rebuild(ctx, false)
}

// Search queries the current index. It implements recommend.Backend.
func (e *Engine) Search(ctx context.Context, query, material, usage string) (*search.Result, error) {
	e.mu.RLock()
	searcher := e.searcher
	e.mu.RUnlock()
	if searcher == nil {
		return nil, core.ErrIndexNotBuilt
	}
	return searcher.Search(ctx, query, material, usage)
}

// Catalog returns the catalog behind the current index. It implements
// recommend.Backend.
func (e *Engine) Catalog() *core.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.catalog == nil {
		return &core.Catalog{}
	}
	return e.catalog
}

// Rebuild loads a valid cached snapshot, or integrates the sources and
// builds a fresh index, persisting the result. With force set the cache is
// ignored. One rebuild runs at a time; concurrent callers queue.
func (e *Engine) Rebuild(ctx context.Context, force bool) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	// A queued caller may find the work already done.
	if !force {
		e.mu.RLock()
		ready := e.searcher != nil && e.searcher.Ready()
		e.mu.RUnlock()
		if ready && e.store.IsValid(e.aiConfig.EmbeddingModel) {
			return nil
		}
	}

	modelID := e.aiConfig.EmbeddingModel

	if !force && e.store.IsValid(modelID) {
		if err := e.loadSnapshot(); err == nil {
			return nil
		} else {
			e.logger.Warn("cached snapshot unusable, rebuilding", "err", err)
		}
	}

	return e.fullRebuild(ctx, modelID)
}

// loadSnapshot restores the index from the cache store without touching
// the source files or the embedding service.
func (e *Engine) loadSnapshot() error {
	snap, err := e.store.Load()
	if err != nil {
		return err
	}

	searcher, err := search.NewEngine(snap.Catalog, e.provider.Embedder(), e.searchOpts...)
	if err != nil {
		return err
	}
	if err := searcher.RestoreIndex(snap.Vectors); err != nil {
		return err
	}

	e.swap(searcher, snap.Catalog)
	e.logger.Info("index restored from cache", "rows", snap.Catalog.Len())
	return nil
}

// fullRebuild integrates the sources, builds the index and saves a fresh
// snapshot. A snapshot save failure is logged but does not fail the
// rebuild; the index is already serving.
func (e *Engine) fullRebuild(ctx context.Context, modelID string) error {
	integrator := catalog.NewIntegrator(e.sources, catalog.WithLogger(e.logger))
	cat, err := integrator.Integrate()
	if err != nil {
		return fmt.Errorf("integrating sources: %w", err)
	}

	searcher, err := search.NewEngine(cat, e.provider.Embedder(), e.searchOpts...)
	if err != nil {
		return err
	}
	if err := searcher.BuildIndex(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	e.swap(searcher, cat)

	hash, err := e.store.ComputeHash(modelID)
	if err != nil {
		e.logger.Warn("snapshot not saved: hashing sources failed", "err", err)
		return nil
	}
	stats := searcher.Stats()
	snap := &cache.Snapshot{
		Catalog: cat,
		Vectors: searcher.Vectors(),
		Lexical: cache.LexicalState{
			Vocabulary: stats.Vocabulary,
			DocCount:   stats.DocCount,
			AvgDocLen:  stats.AvgDocLen,
		},
		Meta: cache.BuildMetadata(cat, searcher.Vectors(), hash, modelID),
	}
	if err := e.store.Save(snap); err != nil {
		e.logger.Warn("snapshot not saved", "err", err)
		return nil
	}

	e.logger.Info("index rebuilt", "rows", cat.Len(), "hash", hash)
	return nil
}

func (e *Engine) swap(searcher *search.Engine, cat *core.Catalog) {
	e.mu.Lock()
	e.searcher = searcher
	e.catalog = cat
	e.mu.Unlock()
}

// ClearCache drops every cached artifact and returns how many were
// deleted. The in-memory index keeps serving until the next rebuild.
func (e *Engine) ClearCache() (int, error) {
	return e.store.Clear()
}

// Info returns the cached snapshot metadata.
func (e *Engine) Info() (*cache.Metadata, error) {
	return e.store.Info()
}

// Status reports engine health for the operator CLI.
type Status struct {
	IndexReady bool
	CacheValid bool
	Rows       int
	VectorDim  int
}

// Status summarizes the current index and cache state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Status{CacheValid: e.store.IsValid(e.aiConfig.EmbeddingModel)}
	if e.searcher != nil && e.searcher.Ready() {
		st.IndexReady = true
		stats := e.searcher.Stats()
		st.Rows = stats.DocCount
		st.VectorDim = stats.VectorDim
	}
	return st
}
