// ABOUTME: MCP tool handler implementations for the document chat server
// ABOUTME: Contains handler implementations with proper error handling for all 3 tools
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/documentgpt/docchat/internal/models"
)

// Composer composes chat answers. Satisfied by composer.Composer.
type Composer interface {
	Answer(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// Retriever finds relevant passages. Satisfied by retriever.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, query, documentID string, topK int) ([]models.ScoredChunk, error)
}

// Indexer runs the indexing pipeline. Satisfied by indexer.Indexer.
type Indexer interface {
	Index(ctx context.Context, req *models.IndexRequest) (*models.IndexResponse, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	composer  Composer
	retriever Retriever
	indexer   Indexer
}

// AskDocument handles the ask_document tool
func (h *Handlers) AskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	req := &models.ChatRequest{
		Query:      query,
		DocumentID: request.GetString("document_id", ""),
		TopK:       int(request.GetFloat("top_k", 0)),
	}
	if err := req.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := h.composer.Answer(ctx, req)
	if resp == nil && err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compose answer: %v", err)), nil
	}

	result, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format answer: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// SearchDocument handles the search_document tool
func (h *Handlers) SearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}
	maxResults := int(request.GetFloat("max_results", 0))

	results, err := h.retriever.Retrieve(ctx, query, documentID, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No relevant passages found. The document may not be indexed yet."), nil
	}

	type passage struct {
		Page  int     `json:"page"`
		Score float64 `json:"score"`
		Text  string  `json:"text"`
	}
	passages := make([]passage, len(results))
	for i, sc := range results {
		passages[i] = passage{Page: sc.Chunk.Page, Score: sc.Score, Text: sc.Chunk.Text}
	}

	result, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// IndexDocument handles the index_document tool
func (h *Handlers) IndexDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id argument is required and must be a string"), nil
	}

	resp, err := h.indexer.Index(ctx, &models.IndexRequest{
		DocumentID: documentID,
		DerivedKey: request.GetString("derived_key", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Indexed document %s: %d chunks stored at %s", resp.DocumentID, resp.Chunks, resp.IndexKey)), nil
}
