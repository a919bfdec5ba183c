// Package embeddings generates vector embeddings via langchaingo.
//
// The service speaks to any OpenAI-compatible embedding endpoint (the
// OpenAI API itself, or a local TEI server) and adds client-side
// batching and optional request rate limiting on top of langchaingo's
// embedder.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")

	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")
)

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL of the OpenAI-compatible endpoint.
	BaseURL string

	// Model is the embedding model identifier.
	Model string

	// APIKey authenticates requests. Optional for keyless local
	// endpoints.
	APIKey string

	// BatchSize is the number of texts sent per request.
	BatchSize int

	// RequestsPerSecond rate-limits embedding API calls; 0 disables the
	// limiter.
	RequestsPerSecond float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Service provides embedding generation.
type Service struct {
	embedder *lcembeddings.EmbedderImpl
	config   Config
}

// limitedClient wraps the embedder client with a rate limiter so every
// API call waits for a token first.
type limitedClient struct {
	inner   lcembeddings.EmbedderClient
	limiter *rate.Limiter
}

func (c *limitedClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.CreateEmbedding(ctx, texts)
}

// NewService creates an embedding service for the given configuration.
func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// langchaingo requires a token even for keyless local endpoints.
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(apiKey),
		openai.WithModel(config.Model),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	var client lcembeddings.EmbedderClient = llm
	if config.RequestsPerSecond > 0 {
		client = &limitedClient{
			inner:   llm,
			limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		}
	}

	embedder, err := lcembeddings.NewEmbedder(client,
		lcembeddings.WithBatchSize(config.BatchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Service{embedder: embedder, config: config}, nil
}

// Embedder returns the underlying langchaingo Embedder for wiring into
// vector stores.
func (s *Service) Embedder() lcembeddings.Embedder {
	return s.embedder
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.config.Model
}

// Embed generates one vector per input text. All vectors share the
// model's output dimensionality.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	return vectors, nil
}
