// Package loader enumerates documentation files and loads them as
// documents ready for cleaning and splitting.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docvector/internal/ignore"
)

// defaultSkipDirs are never descended into, regardless of patterns.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	".next":        true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// Options controls a Load pass.
type Options struct {
	// Root is the directory to walk.
	Root string

	// Include are doublestar globs against root-relative slash paths.
	// Empty means Markdown/MDX.
	Include []string

	// Exclude globs win over Include. Ignore-file patterns found in the
	// tree are appended automatically.
	Exclude []string

	// MaxFileSize caps file size in bytes; larger files are skipped.
	MaxFileSize int64

	// Metadata is attached verbatim to every loaded document.
	Metadata map[string]string
}

// Service loads documentation trees.
type Service struct {
	logger *zap.Logger
	ignore *ignore.Parser
}

// NewService creates a loader. A nil logger is replaced with a no-op.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger: logger,
		ignore: ignore.NewParser(nil, nil),
	}
}

// Load walks the tree at opts.Root and returns one document per
// matching file, in walk order. Binary (non-UTF-8) files and files over
// the size cap are skipped. The walk honors ctx cancellation.
func (s *Service) Load(ctx context.Context, opts Options) ([]schema.Document, error) {
	root, err := validateRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	opts = s.prepare(root, opts)

	repo, inRepo := detectRepo(root)

	var docs []schema.Document
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if defaultSkipDirs[filepath.Base(path)] && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if !matches(relPath, info.Size(), opts) {
			return nil
		}

		doc, ok, err := s.loadFile(ctx, path, relPath, opts, repo, inRepo)
		if err != nil {
			return err
		}
		if ok {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	s.logger.Info("loaded documents",
		zap.String("root", root),
		zap.Int("count", len(docs)))

	return docs, nil
}

// LoadFile loads a single file beneath opts.Root, applying the same
// filters as Load. Returns (nil, nil) when the file is filtered out.
func (s *Service) LoadFile(ctx context.Context, opts Options, path string) (*schema.Document, error) {
	root, err := validateRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	opts = s.prepare(root, opts)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		return nil, fmt.Errorf("computing relative path: %w", err)
	}
	relPath = filepath.ToSlash(relPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if info.IsDir() || !matches(relPath, info.Size(), opts) {
		return nil, nil
	}

	repo, inRepo := detectRepo(root)
	doc, ok, err := s.loadFile(ctx, absPath, relPath, opts, repo, inRepo)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

// prepare fills option defaults and merges ignore-file patterns.
func (s *Service) prepare(root string, opts Options) Options {
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.md", "**/*.mdx"}
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = 1024 * 1024
	}

	patterns, err := s.ignore.Patterns(root)
	if err != nil {
		s.logger.Warn("reading ignore files", zap.Error(err))
	} else {
		opts.Exclude = append(opts.Exclude, patterns...)
	}
	return opts
}

func (s *Service) loadFile(ctx context.Context, path, relPath string, opts Options, repo repoInfo, inRepo bool) (schema.Document, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return schema.Document{}, false, fmt.Errorf("reading %s: %w", path, err)
	}

	// Embedding inputs must be text; skip anything that is not UTF-8.
	if !utf8.Valid(content) {
		s.logger.Debug("skipping non-UTF-8 file", zap.String("path", relPath))
		return schema.Document{}, false, nil
	}

	loaded, err := documentloaders.NewText(bytes.NewReader(content)).Load(ctx)
	if err != nil {
		return schema.Document{}, false, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(loaded) == 0 {
		return schema.Document{}, false, nil
	}

	doc := loaded[0]
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["source"] = relPath
	doc.Metadata["file_name"] = filepath.Base(relPath)
	doc.Metadata["extension"] = filepath.Ext(relPath)
	doc.Metadata["file_size"] = len(content)
	if inRepo {
		doc.Metadata["revision"] = repo.Revision
		doc.Metadata["branch"] = repo.Branch
	}
	for k, v := range opts.Metadata {
		doc.Metadata[k] = v
	}

	return doc, true, nil
}

// matches applies size, exclude, and include filters to a relative
// slash path.
func matches(relPath string, size int64, opts Options) bool {
	if size > opts.MaxFileSize {
		return false
	}

	for _, pattern := range opts.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}

	for _, pattern := range opts.Include {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// validateRoot cleans the root path and requires an existing directory.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("source root cannot be empty")
	}
	cleaned, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("source root does not exist: %s", cleaned)
		}
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source root must be a directory: %s", cleaned)
	}
	return cleaned, nil
}
