package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// snippetLength bounds how much of each hit is printed.
const snippetLength = 240

func newSearchCmd(configPath *string) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a similarity query against the stored documentation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.buildStore(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results, err := store.Search(cmd.Context(), query, topK)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			for i, result := range results {
				source, _ := result.Metadata["source"].(string)
				if source == "" {
					source = "(unknown source)"
				}
				fmt.Printf("%d. %s (score %.4f)\n", i+1, source, result.Score)
				fmt.Printf("   %s\n\n", snippet(result.Content))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 5, "number of results to return")

	return cmd
}

// snippet flattens and truncates chunk text for terminal output.
func snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= snippetLength {
		return flat
	}
	return flat[:snippetLength] + "…"
}
