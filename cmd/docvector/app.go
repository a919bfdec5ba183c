package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docvector/internal/config"
	"github.com/fyrsmithlabs/docvector/internal/embeddings"
	"github.com/fyrsmithlabs/docvector/internal/logging"
	"github.com/fyrsmithlabs/docvector/internal/vectorstore"
)

// app carries the services every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	logging.Sync(a.logger)
}

// buildStore wires the embedding service into the configured vector
// store provider.
func (a *app) buildStore(ctx context.Context) (vectorstore.Store, error) {
	svc, err := embeddings.NewService(embeddings.Config{
		BaseURL:           a.cfg.Embeddings.BaseURL,
		Model:             a.cfg.Embeddings.Model,
		APIKey:            a.cfg.Embeddings.APIKey,
		BatchSize:         a.cfg.Embeddings.BatchSize,
		RequestsPerSecond: a.cfg.Embeddings.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	return vectorstore.New(ctx, vectorstore.Config{
		Provider:   a.cfg.Store.Provider,
		Collection: a.cfg.Store.Collection,
		PGVector: vectorstore.PGVectorConfig{
			URL:         a.cfg.Store.PGVector.URL,
			EnsureIndex: a.cfg.Store.PGVector.EnsureIndex,
		},
		Chromem: vectorstore.ChromemConfig{
			Path:     expandHome(a.cfg.Store.Chromem.Path),
			Compress: a.cfg.Store.Chromem.Compress,
		},
	}, svc.Embedder(), a.logger)
}

// expandHome resolves a leading ~ in paths from the config file.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}
