package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	lcpgvector "github.com/tmc/langchaingo/vectorstores/pgvector"
	"go.uber.org/zap"
)

// pgvectorStore persists records in Postgres through langchaingo's
// pgvector integration. langchaingo owns the schema (collection and
// embedding tables); we only add the ANN index on top.
type pgvectorStore struct {
	store  lcpgvector.Store
	cfg    Config
	logger *zap.Logger

	indexOnce sync.Once
	indexErr  error
}

func newPGVectorStore(ctx context.Context, cfg Config, embedder lcembeddings.Embedder, logger *zap.Logger) (*pgvectorStore, error) {
	store, err := lcpgvector.New(ctx,
		lcpgvector.WithConnectionURL(cfg.PGVector.URL),
		lcpgvector.WithEmbedder(embedder),
		lcpgvector.WithCollectionName(cfg.Collection),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to pgvector: %w", err)
	}

	logger.Info("pgvector store ready",
		zap.String("collection", cfg.Collection))

	return &pgvectorStore{store: store, cfg: cfg, logger: logger}, nil
}

func (s *pgvectorStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	lcDocs := make([]schema.Document, len(docs))
	for i, doc := range docs {
		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		if doc.ID != "" {
			// langchaingo assigns its own row IDs; keep ours queryable.
			meta["record_id"] = doc.ID
		}
		lcDocs[i] = schema.Document{PageContent: doc.Content, Metadata: meta}
	}

	ids, err := s.store.AddDocuments(ctx, lcDocs)
	if err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	// The embedding table exists only after the first insert, so the
	// index is created here rather than at construction.
	if s.cfg.PGVector.EnsureIndex {
		s.indexOnce.Do(func() {
			s.indexErr = ensureHNSWIndex(ctx, s.cfg.PGVector.URL)
		})
		if s.indexErr != nil {
			s.logger.Warn("creating HNSW index", zap.Error(s.indexErr))
		}
	}

	return ids, nil
}

func (s *pgvectorStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	docs, err := s.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, len(docs))
	for i, doc := range docs {
		id, _ := doc.Metadata["record_id"].(string)
		results[i] = SearchResult{
			ID:       id,
			Content:  doc.PageContent,
			Metadata: doc.Metadata,
			Score:    doc.Score,
		}
	}
	return results, nil
}

// ensureHNSWIndex creates a cosine HNSW index on the embedding column
// of langchaingo's embedding table.
func ensureHNSWIndex(ctx context.Context, url string) error {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("connecting for index creation: %w", err)
	}
	defer conn.Close(ctx)

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE INDEX IF NOT EXISTS langchain_pg_embedding_embedding_hnsw
			ON langchain_pg_embedding USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}
