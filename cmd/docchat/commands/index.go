// ABOUTME: CLI command to index a document from a local text file
// ABOUTME: Stores extracted text, builds the embedding index, prints the brief
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/store"
)

var (
	indexID string
)

// NewIndexCmd creates index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a document for question answering",
		Long: `Index a document from an extracted-text file.

The text is normalized, split into overlapping chunks, embedded, and
stored locally. Reindexing the same document replaces its index.

Examples:
  docchat index report.txt
  docchat index --id q3-report extracted/report.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().StringVar(&indexID, "id", "", "Document ID (default: derived from filename)")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	documentID := indexID
	if documentID == "" {
		documentID = documentIDFromPath(path)
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.store.SaveText(ctx, store.TextKey(documentID), string(data)); err != nil {
		return fmt.Errorf("storing text: %w", err)
	}

	resp, err := s.indexer.Index(ctx, &models.IndexRequest{
		DocumentID: documentID,
		Filename:   filepath.Base(path),
		UserID:     localUser,
	})
	if err != nil {
		return fmt.Errorf("indexing document: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s: %d chunks\n", resp.DocumentID, resp.Chunks)
		if record, err := s.store.GetDocument(ctx, localUser, documentID); err == nil && record != nil && record.Summary != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", record.Summary)
			if len(record.Questions) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nTry asking:")
				for _, q := range record.Questions {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", q)
				}
			}
		}
	}
	return nil
}
