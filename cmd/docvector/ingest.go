package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/docvector/internal/ingest"
	"github.com/fyrsmithlabs/docvector/internal/loader"
	"github.com/fyrsmithlabs/docvector/internal/secrets"
	"github.com/fyrsmithlabs/docvector/internal/splitter"
)

func newIngestCmd(configPath *string) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ingest [root]",
		Short: "Embed a documentation tree into the vector store",
		Long: `Walks the given directory (default: the configured source root),
cleans and chunks every Markdown/MDX file, embeds the chunks, and
stores them. With --watch the process stays running and re-ingests
files as they change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			root := a.cfg.Source.Root
			if len(args) > 0 {
				root = args[0]
			}

			pipeline, err := buildPipeline(cmd.Context(), a, root)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d files into %d records (%d chunks, %d tokens) in %s\n",
				result.Files, result.Records, result.Chunks, result.Tokens,
				result.Duration.Round(time.Millisecond))
			if result.SecretFindings > 0 {
				fmt.Printf("Redacted %d secret(s); see the log for rules and locations\n",
					result.SecretFindings)
			}

			if !watch {
				return nil
			}
			return ingest.NewWatcher(pipeline).Watch(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-ingest files on change")

	return cmd
}

func buildPipeline(ctx context.Context, a *app, root string) (*ingest.Pipeline, error) {
	split, err := splitter.New(splitter.Config{
		Mode:         a.cfg.Splitter.Mode,
		ChunkSize:    a.cfg.Splitter.ChunkSize,
		ChunkOverlap: a.cfg.Splitter.ChunkOverlap,
		Encoding:     a.cfg.Splitter.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("creating splitter: %w", err)
	}

	scanner, err := secrets.NewScanner(secrets.Config{
		Enabled:   a.cfg.Secrets.Enabled,
		Redaction: a.cfg.Secrets.Redaction,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("creating secret scanner: %w", err)
	}

	store, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	return ingest.New(ingest.Options{
		Loader:   loader.NewService(a.logger.Named("loader")),
		Splitter: split,
		Scanner:  scanner,
		Store:    store,
		Logger:   a.logger.Named("ingest"),
		Load: loader.Options{
			Root:        root,
			Include:     a.cfg.Source.Include,
			Exclude:     a.cfg.Source.Exclude,
			MaxFileSize: a.cfg.Source.MaxFileSize,
			Metadata:    a.cfg.Metadata,
		},
		CleanerDisabled: a.cfg.Cleaner.Disabled,
		ShowProgress:    true,
	})
}
