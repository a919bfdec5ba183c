package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"
)

// chromemStore persists records in an embedded chromem-go collection,
// in-memory or on disk. No external services needed.
type chromemStore struct {
	collection *chromem.Collection
	logger     *zap.Logger
}

func newChromemStore(cfg Config, embedder lcembeddings.Embedder, logger *zap.Logger) (*chromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if cfg.Chromem.Path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Chromem.Path, cfg.Chromem.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem database: %w", err)
		}
	}

	// chromem computes vectors itself through this hook, so inserts and
	// queries go through the same embedder as the pgvector provider.
	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", cfg.Collection, err)
	}

	logger.Info("chromem store ready",
		zap.String("collection", cfg.Collection),
		zap.String("path", cfg.Chromem.Path),
		zap.Int("existing_documents", collection.Count()))

	return &chromemStore{collection: collection, logger: logger}, nil
}

func (s *chromemStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	ids := make([]string, len(docs))
	cdocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		cdocs[i] = chromem.Document{
			ID:       id,
			Content:  doc.Content,
			Metadata: stringifyMetadata(doc.Metadata),
		}
	}

	// Sequential insertion keeps embedding requests ordered and within
	// the service's rate limit.
	if err := s.collection.AddDocuments(ctx, cdocs, 1); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}
	return ids, nil
}

func (s *chromemStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	// chromem rejects a result count above the collection size.
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	hits, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		meta := make(map[string]any, len(hit.Metadata))
		for key, value := range hit.Metadata {
			meta[key] = value
		}
		results[i] = SearchResult{
			ID:       hit.ID,
			Content:  hit.Content,
			Metadata: meta,
			Score:    hit.Similarity,
		}
	}
	return results, nil
}

// stringifyMetadata converts arbitrary metadata values to the string
// map chromem stores.
func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for key, value := range meta {
		out[key] = fmt.Sprint(value)
	}
	return out
}
