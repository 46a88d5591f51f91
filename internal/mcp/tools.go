package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rlmkit/rlm/internal/store"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // No chunk with the requested ID
	ErrorCodeEmptyQuery    = -32004 // Pattern or query parameter is empty
)

func (s *Server) handleChunk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || strings.TrimSpace(content) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	e, err := s.store.Put(ctx, store.PutParams{
		Content: content,
		Summary: getStringDefault(args, "summary", ""),
		Tags:    getStringSlice(args, "tags"),
		Project: getStringDefault(args, "project", ""),
		Domain:  getStringDefault(args, "domain", ""),
	})
	if err != nil {
		return nil, storeError("chunk failed", err)
	}
	if s.afterChunk != nil {
		s.afterChunk()
	}

	response := map[string]interface{}{
		"status":          "success",
		"chunk_id":        e.ID,
		"summary":         e.Summary,
		"tokens_estimate": e.TokensEstimate,
		"entities":        e.Entities,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handlePeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["chunk_id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "chunk_id parameter is required", map[string]interface{}{
			"param":  "chunk_id",
			"reason": "missing or empty",
		})
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("peek failed", err)
	}

	response := map[string]interface{}{
		"status":       "success",
		"chunk_id":     c.Record.ID,
		"summary":      c.Record.Summary,
		"tags":         c.Record.Tags,
		"project":      c.Record.Project,
		"domain":       c.Record.Domain,
		"created_at":   c.Record.CreatedAt,
		"access_count": c.Record.AccessCount,
		"entities":     c.Record.Entities,
		"content":      c.Content,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	f := getFilters(args)
	entries, err := s.store.List(ctx, store.ListParams{
		Filters: f,
		Tags:    getStringSlice(args, "tags"),
		Limit:   getIntDefault(args, "limit", store.DefaultListLimit),
	})
	if err != nil {
		return nil, storeError("list failed", err)
	}

	response := map[string]interface{}{
		"status": "success",
		"count":  len(entries),
		"chunks": entries,
	}
	if f.Active() {
		response["filters"] = f
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleGrep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pattern, _ := args["pattern"].(string)
	if strings.TrimSpace(pattern) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "pattern parameter is required", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	threshold := getIntDefault(args, "threshold", 0)
	if threshold < 0 || threshold > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "threshold must be between 0 and 100", map[string]interface{}{
			"param": "threshold",
			"value": threshold,
		})
	}

	res, err := s.store.Grep(ctx, store.GrepParams{
		Filters:   getFilters(args),
		Pattern:   pattern,
		Fuzzy:     getBoolDefault(args, "fuzzy", false),
		Threshold: threshold,
		Limit:     getIntDefault(args, "limit", store.DefaultGrepLimit),
	})
	if err != nil {
		return nil, storeError("grep failed", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	res, err := s.store.Search(ctx, store.SearchParams{
		Filters: getFilters(args),
		Query:   query,
		Limit:   getIntDefault(args, "limit", 0),
	})
	if err != nil {
		return nil, storeError("search failed", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, storeError("stats failed", err)
	}
	return mcp.NewToolResultText(formatJSON(st)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// storeError maps store sentinels to protocol codes.
func storeError(message string, err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, "chunk not found", data)
	case errors.Is(err, store.ErrEmptyQuery):
		return newMCPError(ErrorCodeEmptyQuery, "empty query", data)
	case errors.Is(err, store.ErrEmptyContent), errors.Is(err, store.ErrInvalidProject):
		return newMCPError(ErrorCodeInvalidParams, message, data)
	default:
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func getFilters(args map[string]interface{}) store.Filters {
	return store.Filters{
		Project:  getStringDefault(args, "project", ""),
		Domain:   getStringDefault(args, "domain", ""),
		Entity:   getStringDefault(args, "entity", ""),
		DateFrom: getStringDefault(args, "date_from", ""),
		DateTo:   getStringDefault(args, "date_to", ""),
	}
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return strings.TrimSpace(val)
	}
	return defaultValue
}

// getStringSlice accepts a JSON array of strings or a comma-separated string.
func getStringSlice(args map[string]interface{}, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}
