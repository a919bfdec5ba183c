// Command docvector ingests Markdown documentation trees into a vector
// store and answers similarity queries against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "docvector",
		Short: "Embed Markdown documentation into a vector store",
		Long: `docvector walks a documentation tree, normalizes Markdown whitespace,
splits pages into token-bounded overlapping chunks, embeds each chunk
through an OpenAI-compatible API, and stores the vectors in Postgres
(pgvector) or an embedded chromem database for similarity search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file path (default ~/.config/docvector/config.yaml)")

	cmd.AddCommand(
		newIngestCmd(&configPath),
		newSearchCmd(&configPath),
		newInitCmd(),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docvector %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
