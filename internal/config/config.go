// Package config provides configuration loading for docvector.
package config

import (
	"fmt"
	"net/url"
	"os"
)

// Config is the full docvector configuration.
type Config struct {
	Source     SourceConfig      `koanf:"source"`
	Cleaner    CleanerConfig     `koanf:"cleaner"`
	Splitter   SplitterConfig    `koanf:"splitter"`
	Embeddings EmbeddingsConfig  `koanf:"embeddings"`
	Store      StoreConfig       `koanf:"store"`
	Secrets    SecretsConfig     `koanf:"secrets"`
	Logging    LoggingConfig     `koanf:"logging"`
	Metadata   map[string]string `koanf:"metadata"`
}

// SourceConfig describes the documentation tree to ingest.
type SourceConfig struct {
	// Root is the directory to walk. Defaults to the current directory;
	// usually overridden by the ingest command's positional argument.
	Root string `koanf:"root"`

	// Include are doublestar globs matched against root-relative paths.
	Include []string `koanf:"include"`

	// Exclude are doublestar globs; they win over Include. Patterns from
	// ignore files in the tree are appended at load time.
	Exclude []string `koanf:"exclude"`

	// MaxFileSize caps individual file size in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`
}

// CleanerConfig controls the Markdown whitespace cleaner.
type CleanerConfig struct {
	// Disabled skips cleaning. Zero value keeps the cleaner on.
	Disabled bool `koanf:"disabled"`
}

// SplitterConfig controls chunking.
type SplitterConfig struct {
	// Mode is "token" (tiktoken budgets, the default) or "character".
	Mode string `koanf:"mode"`

	// ChunkSize is the maximum chunk size in tokens (or characters).
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the shared window between adjacent chunks.
	ChunkOverlap int `koanf:"chunk_overlap"`

	// Encoding is the tiktoken encoding used in token mode.
	Encoding string `koanf:"encoding"`
}

// EmbeddingsConfig configures the embedding API client.
type EmbeddingsConfig struct {
	// BaseURL of the OpenAI-compatible endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model identifier.
	Model string `koanf:"model"`

	// APIKey authenticates against the endpoint. Falls back to
	// OPENAI_API_KEY.
	APIKey string `koanf:"api_key"`

	// BatchSize is the number of texts per embedding request.
	BatchSize int `koanf:"batch_size"`

	// RequestsPerSecond rate-limits API calls; 0 disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	// Provider is "pgvector" (default) or "chromem".
	Provider string `koanf:"provider"`

	// Collection is the logical collection name records are written to.
	Collection string `koanf:"collection"`

	PGVector PGVectorConfig `koanf:"pgvector"`
	Chromem  ChromemConfig  `koanf:"chromem"`
}

// PGVectorConfig configures the Postgres/pgvector provider.
type PGVectorConfig struct {
	// URL is the postgres connection URL. If empty it is assembled from
	// the DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD environment
	// variables.
	URL string `koanf:"url"`

	// EnsureIndex creates an HNSW index on the embedding column after
	// connecting.
	EnsureIndex bool `koanf:"ensure_index"`
}

// ChromemConfig configures the embedded chromem-go provider.
type ChromemConfig struct {
	// Path is the persistence directory; empty means in-memory.
	Path string `koanf:"path"`

	// Compress gzips persisted records.
	Compress bool `koanf:"compress"`
}

// SecretsConfig controls pre-embedding secret scanning.
type SecretsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Redaction replaces detected secrets in chunk text.
	Redaction string `koanf:"redaction"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "console" or "json".
	Format string `koanf:"format"`
}

// applyDefaults fills unset fields, honoring the legacy environment
// surface (OPENAI_API_KEY, EMBEDDING_MODEL, DB_*) as fallbacks.
func applyDefaults(cfg *Config) {
	if cfg.Source.Root == "" {
		cfg.Source.Root = "."
	}
	if len(cfg.Source.Include) == 0 {
		cfg.Source.Include = []string{"**/*.md", "**/*.mdx"}
	}
	if cfg.Source.MaxFileSize == 0 {
		cfg.Source.MaxFileSize = 1024 * 1024
	}

	if cfg.Splitter.Mode == "" {
		cfg.Splitter.Mode = "token"
	}
	if cfg.Splitter.ChunkSize == 0 {
		cfg.Splitter.ChunkSize = 1000
	}
	if cfg.Splitter.ChunkOverlap == 0 {
		cfg.Splitter.ChunkOverlap = 200
	}
	if cfg.Splitter.Encoding == "" {
		cfg.Splitter.Encoding = "cl100k_base"
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embeddings.Model == "" {
		if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
			cfg.Embeddings.Model = model
		} else {
			cfg.Embeddings.Model = "text-embedding-3-small"
		}
	}
	if cfg.Embeddings.APIKey == "" {
		cfg.Embeddings.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embeddings.BatchSize == 0 {
		cfg.Embeddings.BatchSize = 100
	}

	if cfg.Store.Provider == "" {
		cfg.Store.Provider = "pgvector"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "documentations"
	}
	if cfg.Store.PGVector.URL == "" {
		cfg.Store.PGVector.URL = pgURLFromEnv()
	}
	if cfg.Store.Chromem.Path == "" {
		cfg.Store.Chromem.Path = "~/.config/docvector/vectorstore"
	}

	if cfg.Secrets.Redaction == "" {
		cfg.Secrets.Redaction = "[REDACTED]"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// pgURLFromEnv assembles a postgres URL from the DB_* variables the
// original ingestion setup used. Returns "" when the required parts are
// missing.
func pgURLFromEnv() string {
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   host + ":" + port,
		Path:   "/" + name,
	}
	if user := os.Getenv("DB_USER"); user != "" {
		u.User = url.UserPassword(user, os.Getenv("DB_PASSWORD"))
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()

	return u.String()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Splitter.Mode {
	case "token", "character":
	default:
		return fmt.Errorf("splitter mode must be \"token\" or \"character\", got %q", c.Splitter.Mode)
	}
	if c.Splitter.ChunkSize <= 0 {
		return fmt.Errorf("splitter chunk_size must be positive, got %d", c.Splitter.ChunkSize)
	}
	if c.Splitter.ChunkOverlap < 0 || c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("splitter chunk_overlap must be in [0, chunk_size), got %d", c.Splitter.ChunkOverlap)
	}

	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if c.Embeddings.RequestsPerSecond < 0 {
		return fmt.Errorf("embeddings requests_per_second must be >= 0, got %v", c.Embeddings.RequestsPerSecond)
	}

	switch c.Store.Provider {
	case "pgvector":
		if c.Store.PGVector.URL == "" {
			return fmt.Errorf("pgvector provider requires store.pgvector.url (or the DB_* environment variables)")
		}
	case "chromem":
	default:
		return fmt.Errorf("store provider must be \"pgvector\" or \"chromem\", got %q", c.Store.Provider)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}
