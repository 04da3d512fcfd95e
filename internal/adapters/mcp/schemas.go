package mcpadapter

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func legalAskTool() mcp.Tool {
	return mcp.Tool{
		Name:        "legal_ask",
		Description: "Answer a Vietnamese legal question from the indexed corpus, with cited sources",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The legal question, in Vietnamese",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Retrieval mode: fast, balanced or accurate",
					"default":     "balanced",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Override for the number of fused candidates to retrieve",
				},
				"rerank_top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Override for the number of candidates sent to the reranker",
				},
			},
			Required: []string{"question"},
		},
	}
}

func legalSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "legal_search",
		Description: "Retrieve and rank legal passages for a question without generating an answer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The legal question, in Vietnamese",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Retrieval mode: fast, balanced or accurate",
					"default":     "balanced",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Override for the number of fused candidates to retrieve",
				},
				"rerank_top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Override for the number of candidates sent to the reranker",
				},
			},
			Required: []string{"question"},
		},
	}
}
