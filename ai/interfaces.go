package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in one batch.
	// The returned slice preserves input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Advisor consults a language model about classification codes.
// Implementations must be thread-safe for concurrent use. Errors from either
// method mean "stage unavailable"; callers degrade rather than fail.
type Advisor interface {
	// ProposeCodes asks the model to independently propose up to five
	// classification codes for the product, with a 1-10 confidence and a
	// short justification each. No retrieval context is supplied.
	ProposeCodes(ctx context.Context, description, material, usage string) ([]CodeProposal, error)

	// RankCandidates sends retrieved candidates back to the model and asks
	// for a 1-10 relevance score with justification per code.
	RankCandidates(ctx context.Context, description string, candidates []RankingInput) ([]CodeRanking, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Advisor returns the code advisory service.
	Advisor() Advisor

	// Close releases resources held by the provider and its services.
	Close() error
}
