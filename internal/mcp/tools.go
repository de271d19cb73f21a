package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/worker"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty or too short
)

// handleCrossReference handles the cross_reference_search tool invocation
func (s *Server) handleCrossReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	req := models.CrossReferenceRequest{
		Query:  getStringDefault(args, "query", ""),
		Scope:  getStringDefault(args, "scope", "all"),
		Volume: getStringDefault(args, "volume", ""),
		Books:  getStringSlice(args, "books"),
	}
	scope, err := search.ProcessCrossReference(&req, s.config.Search.MinQueryLength, s.engine.Engine().Volumes())
	if err != nil {
		return nil, requestError(err, map[string]interface{}{"query": req.Query, "scope": req.Scope})
	}
	resp, err := wait(ctx, s.engine.CrossReference(ctx, scope, req.Query))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleProximity handles the proximity_search tool invocation
func (s *Server) handleProximity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	req := models.ProximityRequest{
		Term1: getStringDefault(args, "term1", ""),
		Term2: getStringDefault(args, "term2", ""),
	}
	if _, ok := args["max_distance"]; ok {
		d := getIntDefault(args, "max_distance", 0)
		req.MaxDistance = &d
	}
	distance, err := search.ProcessProximity(&req, s.config.Search.DefaultProximityDistance)
	if err != nil {
		return nil, requestError(err, map[string]interface{}{"term1": req.Term1, "term2": req.Term2})
	}
	resp, err := wait(ctx, s.engine.Proximity(ctx, req.Term1, req.Term2, distance))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleWordFrequency handles the word_frequency tool invocation
func (s *Server) handleWordFrequency(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	req := models.FrequencyRequest{
		Terms: getStringSlice(args, "terms"),
		Book:  getStringDefault(args, "book", ""),
	}
	if err := search.ProcessFrequency(&req); err != nil {
		return nil, requestError(err, nil)
	}

	var future *worker.Future[*models.FrequencyResponse]
	if req.Book != "" {
		future = s.engine.ChapterFrequencies(ctx, req.Book, req.Terms)
	} else {
		future = s.engine.BookFrequencies(ctx, req.Terms)
	}
	resp, err := wait(ctx, future)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleCorpusStatus handles the corpus_status tool invocation
func (s *Server) handleCorpusStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"volumes": s.engine.Engine().Status(),
	})), nil
}

func wait[T any](ctx context.Context, f *worker.Future[T]) (T, error) {
	val, err := f.Wait(ctx)
	if err != nil {
		var zero T
		return zero, newMCPError(ErrorCodeInternalError, "query did not complete", map[string]interface{}{
			"job_id": f.ID(),
			"error":  err.Error(),
		})
	}
	return val, nil
}

// requestError maps a rejected request onto an MCP error code.
func requestError(err error, data interface{}) error {
	var reqErr *search.RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == search.EmptyQuery {
		return newMCPError(ErrorCodeEmptyQuery, reqErr.Message, data)
	}
	return newMCPError(ErrorCodeInvalidParams, err.Error(), data)
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

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		zap.L().Debug("format json failed", zap.Error(err))
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
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
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter. A plain string is split on commas.
func getStringSlice(args map[string]interface{}, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
