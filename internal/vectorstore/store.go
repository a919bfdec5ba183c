// Package vectorstore persists embedded chunks and answers similarity
// queries.
//
// Two providers are supported behind one interface: pgvector (Postgres
// with the vector extension, via langchaingo) for shared deployments,
// and chromem (embedded, pure Go) for local or air-gapped use.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"
)

// Providers.
const (
	ProviderPGVector = "pgvector"
	ProviderChromem  = "chromem"
)

var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid vectorstore configuration")

	// ErrEmptyDocuments indicates an add with no documents.
	ErrEmptyDocuments = errors.New("no documents to add")
)

// Document is one embeddable record: the chunk text plus its metadata.
// An empty ID is assigned by the store.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// SearchResult is one similarity hit. Score is the provider's
// similarity measure, higher is closer.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]any
	Score    float32
}

// Store is the persistence interface the ingest pipeline and the search
// command talk to.
type Store interface {
	// AddDocuments embeds and persists the documents, returning the
	// stored record IDs in input order.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k records most similar to the query.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// PGVectorConfig configures the pgvector provider.
type PGVectorConfig struct {
	// URL is the Postgres connection URL.
	URL string

	// EnsureIndex creates an HNSW index on the embedding column after
	// the first insert.
	EnsureIndex bool
}

// ChromemConfig configures the chromem provider.
type ChromemConfig struct {
	// Path is the on-disk location. Empty means in-memory.
	Path string

	// Compress gzips persisted collections.
	Compress bool
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	Collection string
	PGVector   PGVectorConfig
	Chromem    ChromemConfig
}

// Validate checks the configuration for the selected provider.
func (c Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("%w: collection required", ErrInvalidConfig)
	}
	switch c.Provider {
	case ProviderPGVector:
		if c.PGVector.URL == "" {
			return fmt.Errorf("%w: pgvector URL required", ErrInvalidConfig)
		}
	case ProviderChromem:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	return nil
}

// New creates the configured store. The embedder generates vectors for
// both inserts and queries, so stored and query vectors always come
// from the same model.
func New(ctx context.Context, cfg Config, embedder lcembeddings.Embedder, logger *zap.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderPGVector:
		return newPGVectorStore(ctx, cfg, embedder, logger)
	case ProviderChromem:
		return newChromemStore(cfg, embedder, logger)
	}
	return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
}
