// ABOUTME: MCP tool definitions and registration for the document chat server
// ABOUTME: Defines JSON schemas for the ask, search, and index tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, composer Composer, retriever Retriever, indexer Indexer) *Handlers {
	handlers := &Handlers{
		composer:  composer,
		retriever: retriever,
		indexer:   indexer,
	}

	// 1. ask_document - Ask a question about an indexed document
	server.AddTool(mcp.Tool{
		Name:        "ask_document",
		Description: "Ask a question about an indexed document. Answers are grounded in the document's content with numbered citations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question to ask",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document to ask about. Omit for a general chat answer.",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "How many passages to ground the answer on (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AskDocument)

	// 2. search_document - Retrieve the most relevant passages without answering
	server.AddTool(mcp.Tool{
		Name:        "search_document",
		Description: "Search an indexed document and return the most relevant passages with similarity scores, without composing an answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document to search",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of passages to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query", "document_id"},
		},
	}, handlers.SearchDocument)

	// 3. index_document - Build or rebuild a document's embedding index
	server.AddTool(mcp.Tool{
		Name:        "index_document",
		Description: "Build or rebuild the embedding index for a document from its extracted text. Replaces any existing index.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Document to index",
				},
				"derived_key": map[string]interface{}{
					"type":        "string",
					"description": "Optional storage key of the extracted text",
				},
			},
			Required: []string{"document_id"},
		},
	}, handlers.IndexDocument)

	return handlers
}
