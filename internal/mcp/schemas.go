package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// crossReferenceTool returns the tool definition for cross_reference_search
func crossReferenceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cross_reference_search",
		Description: "Find every verse containing a phrase (case-insensitive substring), in corpus order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to look for inside verses",
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Part of the corpus to search",
					"enum":        []string{"all", "book", "selected"},
					"default":     "all",
				},
				"volume": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the search to one volume, e.g. \"Book of Mormon\"",
				},
				"books": map[string]interface{}{
					"type":        "array",
					"description": "Book names for the book and selected scopes",
					"items":       map[string]interface{}{"type": "string"},
				},
			},
			Required: []string{"query"},
		},
	}
}

// proximityTool returns the tool definition for proximity_search
func proximityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "proximity_search",
		Description: "Find verses where two words occur within a given number of words of each other",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term1": map[string]interface{}{
					"type":        "string",
					"description": "First word",
				},
				"term2": map[string]interface{}{
					"type":        "string",
					"description": "Second word",
				},
				"max_distance": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum distance between the words, in words",
					"minimum":     0,
				},
			},
			Required: []string{"term1", "term2"},
		},
	}
}

// wordFrequencyTool returns the tool definition for word_frequency
func wordFrequencyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "word_frequency",
		Description: "Count occurrences of words per book, or per chapter of one book",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"terms": map[string]interface{}{
					"type":        "array",
					"description": "Words or phrases to count",
					"items":       map[string]interface{}{"type": "string"},
				},
				"book": map[string]interface{}{
					"type":        "string",
					"description": "When set, count per chapter of this book instead of per book",
				},
			},
			Required: []string{"terms"},
		},
	}
}

// corpusStatusTool returns the tool definition for corpus_status
func corpusStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "corpus_status",
		Description: "Report which volumes are loaded, with book, chapter and verse counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
