package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const (
	errorCodeInvalidParams = -32602
	errorCodeInternal      = -32603
)

type toolError struct {
	Code    int
	Message string
}

func (e *toolError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

type askParams struct {
	question   string
	mode       domain.RetrievalMode
	topK       int
	rerankTopK int
}

func parseAskParams(request mcp.CallToolRequest) (askParams, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return askParams{}, &toolError{errorCodeInvalidParams, "invalid arguments"}
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return askParams{}, &toolError{errorCodeInvalidParams, "question parameter is required"}
	}

	mode, ok := domain.ParseRetrievalMode(getStringDefault(args, "mode", ""))
	if !ok {
		return askParams{}, &toolError{errorCodeInvalidParams, "unknown retrieval mode"}
	}

	return askParams{
		question:   question,
		mode:       mode,
		topK:       getIntDefault(args, "top_k", 0),
		rerankTopK: getIntDefault(args, "rerank_top_k", 0),
	}, nil
}

func (s *Server) handleLegalAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseAskParams(request)
	if err != nil {
		return nil, err
	}

	answer, err := s.answerer.Ask(ctx, params.question, params.mode, params.topK, params.rerankTopK)
	if err != nil {
		return nil, &toolError{errorCodeInternal, err.Error()}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"answer":    answer.Text,
		"mode":      string(answer.Mode),
		"cache_hit": answer.CacheHit,
		"sources":   answer.Sources,
	})), nil
}

func (s *Server) handleLegalSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := parseAskParams(request)
	if err != nil {
		return nil, err
	}

	results, err := s.answerer.Retrieve(ctx, params.question, params.mode, params.topK, params.rerankTopK)
	if err != nil {
		return nil, &toolError{errorCodeInternal, err.Error()}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"mode":    string(params.mode),
		"results": results,
	})), nil
}

func formatJSON(data map[string]interface{}) string {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(raw)
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
