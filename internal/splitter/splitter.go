// Package splitter turns cleaned documents into token-bounded chunks.
//
// Splitting is delegated to langchaingo's text splitters: token mode
// uses the tiktoken-backed TokenSplitter (the default, matching the
// embedding model's tokenizer), character mode uses the recursive
// character splitter and needs no tokenizer data, which keeps air-gapped
// runs and tests hermetic.
package splitter

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Splitting modes.
const (
	ModeToken     = "token"
	ModeCharacter = "character"
)

// Metadata keys attached to every chunk.
const (
	MetaChunkIndex = "chunk_index"
	MetaChunkTotal = "chunk_total"
)

// ErrInvalidConfig indicates invalid splitter configuration.
var ErrInvalidConfig = errors.New("invalid splitter configuration")

// Config holds splitter configuration.
type Config struct {
	// Mode selects the unit of measure: ModeToken or ModeCharacter.
	Mode string

	// ChunkSize is the maximum chunk size in mode units.
	ChunkSize int

	// ChunkOverlap is the window shared by adjacent chunks.
	ChunkOverlap int

	// Encoding names the tiktoken encoding used in token mode,
	// e.g. "cl100k_base".
	Encoding string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeToken, ModeCharacter:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidConfig)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be >= 0 and < chunk size", ErrInvalidConfig)
	}
	if c.Mode == ModeToken && c.Encoding == "" {
		return fmt.Errorf("%w: token mode requires an encoding", ErrInvalidConfig)
	}
	return nil
}

// Splitter splits documents into overlapping chunks.
type Splitter struct {
	cfg   Config
	inner textsplitter.TextSplitter

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
}

// New creates a Splitter for the given configuration.
func New(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var inner textsplitter.TextSplitter
	switch cfg.Mode {
	case ModeToken:
		inner = textsplitter.NewTokenSplitter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
			textsplitter.WithEncodingName(cfg.Encoding),
		)
	case ModeCharacter:
		inner = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		)
	}

	return &Splitter{cfg: cfg, inner: inner}, nil
}

// SplitDocuments splits each document and returns the chunks in source
// order. Every chunk inherits its parent's metadata plus its position
// (MetaChunkIndex, MetaChunkTotal). A document that fits the budget
// yields exactly one chunk.
func (s *Splitter) SplitDocuments(docs []schema.Document) ([]schema.Document, error) {
	var out []schema.Document
	for _, doc := range docs {
		texts, err := s.inner.SplitText(doc.PageContent)
		if err != nil {
			return nil, fmt.Errorf("splitting document %v: %w", doc.Metadata["source"], err)
		}

		for i, text := range texts {
			meta := make(map[string]any, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta[MetaChunkIndex] = i
			meta[MetaChunkTotal] = len(texts)

			out = append(out, schema.Document{PageContent: text, Metadata: meta})
		}
	}
	return out, nil
}

// CountTokens measures text in the splitter's unit: tiktoken tokens in
// token mode, runes in character mode. Used for ingest statistics.
func (s *Splitter) CountTokens(text string) (int, error) {
	if s.cfg.Mode == ModeCharacter {
		return utf8.RuneCountInString(text), nil
	}

	s.encOnce.Do(func() {
		s.enc, s.encErr = tiktoken.GetEncoding(s.cfg.Encoding)
	})
	if s.encErr != nil {
		return 0, fmt.Errorf("loading encoding %q: %w", s.cfg.Encoding, s.encErr)
	}
	return len(s.enc.Encode(text, nil, nil)), nil
}
