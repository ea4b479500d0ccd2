// ABOUTME: CLI command to search an indexed document
// ABOUTME: Shows scored passages without composing an answer
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	searchDoc   string
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a document's passages",
		Long: `Search an indexed document and show the most relevant passages
with their similarity scores, without composing an answer.

Examples:
  docchat search --doc q3-report "revenue growth"
  docchat search --doc q3-report --limit 10 "hiring plan"
  docchat search --doc q3-report --format json "risks"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchDoc, "doc", "", "Document ID to search (required)")
	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	// Validate limit flag
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	query := args[0]

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.retriever.Retrieve(cmd.Context(), query, searchDoc, searchLimit)
	if err != nil {
		return fmt.Errorf("searching document: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No relevant passages in %s for query: %s\n", searchDoc, query)
		}
		return nil
	}

	// Format output
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		// Table format
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SCORE\tPAGE\tPASSAGE\n")
		fmt.Fprintf(w, "-----\t----\t-------\n")

		for _, result := range results {
			fmt.Fprintf(w, "%.3f\t%d\t%s\n",
				result.Score,
				result.Chunk.Page,
				truncate(result.Chunk.Text, 70))
		}
		w.Flush()

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d passage(s)\n", len(results))
		}
	}

	return nil
}
