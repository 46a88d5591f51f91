package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rlmkit/rlm/internal/store"
)

// filterProperties are shared by every tool that narrows by record fields.
func filterProperties() map[string]interface{} {
	return map[string]interface{}{
		"project": map[string]interface{}{
			"type":        "string",
			"description": "Only chunks of this project",
		},
		"domain": map[string]interface{}{
			"type":        "string",
			"description": "Only chunks of this domain",
		},
		"entity": map[string]interface{}{
			"type":        "string",
			"description": "Only chunks with an extracted entity containing this text (case-insensitive)",
		},
		"date_from": map[string]interface{}{
			"type":        "string",
			"description": "Inclusive lower bound, YYYY-MM-DD",
		},
		"date_to": map[string]interface{}{
			"type":        "string",
			"description": "Inclusive upper bound, YYYY-MM-DD",
		},
	}
}

func withFilters(props map[string]interface{}) map[string]interface{} {
	for k, v := range filterProperties() {
		props[k] = v
	}
	return props
}

func chunkTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_chunk",
		Description: "Store a piece of conversation context as a chunk for later retrieval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Chunk body (markdown)",
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "One-line summary; defaults to the first line of content",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Free-form tags",
					"items":       map[string]interface{}{"type": "string"},
				},
				"project": map[string]interface{}{
					"type":        "string",
					"description": "Project name, letters, digits, '_', '.' and '-' only",
				},
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Domain label",
				},
			},
			Required: []string{"content"},
		},
	}
}

func peekTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_peek",
		Description: "Read a stored chunk by ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chunk_id": map[string]interface{}{
					"type":        "string",
					"description": "Chunk ID, e.g. 2026-01-18_RLM_001",
				},
			},
			Required: []string{"chunk_id"},
		},
	}
}

func listTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_list",
		Description: "List chunk records, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withFilters(map[string]interface{}{
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Only chunks carrying all of these tags",
					"items":       map[string]interface{}{"type": "string"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of records",
					"default":     store.DefaultListLimit,
					"minimum":     1,
				},
			}),
		},
	}
}

func grepTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_grep",
		Description: "Search chunk bodies line by line with a regular expression, or approximately with fuzzy=true",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withFilters(map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive regular expression; invalid expressions match literally",
				},
				"fuzzy": map[string]interface{}{
					"type":        "boolean",
					"description": "Tolerate typos; returns the best line per chunk with a 0-100 score",
					"default":     false,
				},
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum fuzzy score (0-100)",
					"default":     store.DefaultFuzzyThreshold,
					"minimum":     0,
					"maximum":     100,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches",
					"default":     store.DefaultGrepLimit,
					"minimum":     1,
				},
			}),
			Required: []string{"pattern"},
		},
	}
}

func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_search",
		Description: "Ranked full-text search over chunks (BM25), one best passage per chunk",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withFilters(map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results",
					"default":     store.DefaultSearchLimit,
					"minimum":     1,
				},
			}),
			Required: []string{"query"},
		},
	}
}

func statsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rlm_stats",
		Description: "Chunk store statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
