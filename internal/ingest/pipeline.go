// Package ingest wires the loader, cleaner, splitter, secret scanner,
// and vector store into one pipeline: documentation tree in, searchable
// records out.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docvector/internal/loader"
	"github.com/fyrsmithlabs/docvector/internal/markdown"
	"github.com/fyrsmithlabs/docvector/internal/secrets"
	"github.com/fyrsmithlabs/docvector/internal/splitter"
	"github.com/fyrsmithlabs/docvector/internal/vectorstore"
)

// defaultInsertBatch is the number of records sent to the store per
// AddDocuments call.
const defaultInsertBatch = 32

// Options configures a Pipeline.
type Options struct {
	Loader   *loader.Service
	Splitter *splitter.Splitter
	Scanner  *secrets.Scanner
	Store    vectorstore.Store
	Logger   *zap.Logger

	// Load controls file enumeration.
	Load loader.Options

	// CleanerDisabled skips whitespace normalization.
	CleanerDisabled bool

	// InsertBatch overrides the store insert batch size.
	InsertBatch int

	// ShowProgress renders a progress bar on stderr during insertion.
	ShowProgress bool
}

// Result summarizes one ingest run.
type Result struct {
	Files          int
	Chunks         int
	Records        int
	Tokens         int
	SecretFindings int
	Duration       time.Duration
}

// Pipeline ingests documentation into the vector store.
type Pipeline struct {
	opts   Options
	logger *zap.Logger
}

// New creates a pipeline. Loader, Splitter, Scanner, and Store are
// required.
func New(opts Options) (*Pipeline, error) {
	if opts.Loader == nil || opts.Splitter == nil || opts.Scanner == nil || opts.Store == nil {
		return nil, fmt.Errorf("loader, splitter, scanner, and store are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.InsertBatch <= 0 {
		opts.InsertBatch = defaultInsertBatch
	}
	return &Pipeline{opts: opts, logger: opts.Logger}, nil
}

// Run executes a full pass: enumerate, clean, split, scan, embed,
// store. The first error aborts the run; completed inserts are kept.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	docs, err := p.opts.Loader.Load(ctx, p.opts.Load)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	result := &Result{Files: len(docs)}
	if len(docs) == 0 {
		p.logger.Warn("no matching files found", zap.String("root", p.opts.Load.Root))
		result.Duration = time.Since(start)
		return result, nil
	}

	records, err := p.prepare(docs, result)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	stored, err := p.insert(ctx, records)
	result.Records = stored
	if err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	p.logger.Info("ingest complete",
		zap.Int("files", result.Files),
		zap.Int("chunks", result.Chunks),
		zap.Int("records", result.Records),
		zap.Int("tokens", result.Tokens),
		zap.Int("secret_findings", result.SecretFindings),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// ReIngestFile loads and stores a single file, appending new records.
// Used by watch mode. Returns the number of records stored; zero when
// the file is filtered out or empty after cleaning.
func (p *Pipeline) ReIngestFile(ctx context.Context, path string) (int, error) {
	doc, err := p.opts.Loader.LoadFile(ctx, p.opts.Load, path)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", path, err)
	}
	if doc == nil {
		return 0, nil
	}

	var result Result
	records, err := p.prepare([]schema.Document{*doc}, &result)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return p.insert(ctx, records)
}

// prepare cleans, splits, and scans documents, producing store-ready
// records and accumulating stats into result.
func (p *Pipeline) prepare(docs []schema.Document, result *Result) ([]vectorstore.Document, error) {
	cleaned := make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		if !p.opts.CleanerDisabled {
			doc.PageContent = markdown.Clean(doc.PageContent)
		}
		if strings.TrimSpace(doc.PageContent) == "" {
			p.logger.Debug("skipping empty document",
				zap.Any("source", doc.Metadata["source"]))
			continue
		}
		cleaned = append(cleaned, doc)
	}

	chunks, err := p.opts.Splitter.SplitDocuments(cleaned)
	if err != nil {
		return nil, fmt.Errorf("splitting documents: %w", err)
	}
	result.Chunks = len(chunks)

	records := make([]vectorstore.Document, 0, len(chunks))
	for _, chunk := range chunks {
		source, _ := chunk.Metadata["source"].(string)

		scanned := p.opts.Scanner.Scan(chunk.PageContent, source)
		result.SecretFindings += len(scanned.Findings)

		tokens, err := p.opts.Splitter.CountTokens(scanned.Text)
		if err != nil {
			p.logger.Warn("counting tokens", zap.Error(err))
		} else {
			result.Tokens += tokens
		}

		records = append(records, vectorstore.Document{
			ID:       uuid.NewString(),
			Content:  scanned.Text,
			Metadata: chunk.Metadata,
		})
	}
	return records, nil
}

// insert stores records in batches, returning how many were stored
// before any error.
func (p *Pipeline) insert(ctx context.Context, records []vectorstore.Document) (int, error) {
	var bar *progressbar.ProgressBar
	if p.opts.ShowProgress {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("embedding"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	stored := 0
	for i := 0; i < len(records); i += p.opts.InsertBatch {
		end := i + p.opts.InsertBatch
		if end > len(records) {
			end = len(records)
		}

		ids, err := p.opts.Store.AddDocuments(ctx, records[i:end])
		stored += len(ids)
		if err != nil {
			return stored, fmt.Errorf("storing batch at %d: %w", i, err)
		}

		if bar != nil {
			_ = bar.Add(end - i)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return stored, nil
}
