// ABOUTME: CLI command to ask a question about an indexed document
// ABOUTME: Supports streamed token output and cited evidence display
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/documentgpt/docchat/internal/models"
)

var (
	askDoc    string
	askTopK   int
	askStream bool
)

// NewAskCmd creates ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long: `Ask a question, optionally grounded in an indexed document.

With --doc, the answer is composed from the document's most relevant
passages and carries numbered citations. Without it, the answer comes
from the model alone.

Examples:
  docchat ask "What is a bloom filter?"
  docchat ask --doc q3-report "What were the Q3 results?"
  docchat ask --doc q3-report --stream "Summarize the outlook section"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askDoc, "doc", "", "Document ID to ground the answer in")
	cmd.Flags().IntVar(&askTopK, "top-k", 0, "Passages to ground the answer on (default: configured)")
	cmd.Flags().BoolVar(&askStream, "stream", false, "Stream tokens as they arrive")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if askTopK < 0 {
		return validatePositiveInt(askTopK, "top-k")
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	req := &models.ChatRequest{
		Query:      args[0],
		DocumentID: askDoc,
		TopK:       askTopK,
		UserID:     localUser,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	if askStream {
		frames, err := s.composer.StreamAnswer(ctx, req)
		if err != nil {
			return fmt.Errorf("asking: %w", err)
		}
		var citations []models.Citation
		for frame := range frames {
			switch {
			case frame.Error != "":
				return fmt.Errorf("stream failed: %s", frame.Error)
			case frame.Event == models.StreamEventMetadata:
				citations = frame.Citations
			case frame.Token != "":
				fmt.Fprint(cmd.OutOrStdout(), frame.Token)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout())
		printCitations(cmd, citations)
		return nil
	}

	resp, err := s.composer.Answer(ctx, req)
	if resp == nil && err != nil {
		return fmt.Errorf("asking: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
	printCitations(cmd, resp.Citations)
	return nil
}

func printCitations(cmd *cobra.Command, citations []models.Citation) {
	if quiet || len(citations) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
	for _, c := range citations {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] page %d (%.2f): %s\n",
			c.N, c.Page, c.Score, truncate(c.Snippet, 70))
	}
}
