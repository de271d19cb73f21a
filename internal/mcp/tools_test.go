package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/worker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Corpus.Volumes = []config.VolumeConfig{{Name: "Old Testament"}, {Name: "New Testament"}}

	loader := corpus.StaticLoader{
		"Old Testament": {Name: "Old Testament", Books: []models.Book{{
			Name: "Genesis",
			Chapters: []models.Chapter{
				{Number: 1, Verses: []models.Verse{
					{Number: 1, Text: "In the beginning God created the heaven and the earth."},
					{Number: 3, Text: "And God said, Let there be light: and there was light."},
				}},
				{Number: 2, Verses: []models.Verse{{Number: 1, Text: "Thus the heavens and the earth were finished."}}},
			},
		}}},
		"New Testament": {Name: "New Testament", Books: []models.Book{{
			Name: "John",
			Chapters: []models.Chapter{
				{Number: 1, Verses: []models.Verse{{Number: 1, Text: "In the beginning was the Word"}}},
			},
		}}},
	}
	store := corpus.NewStore(loader, cfg.Corpus.VolumeNames())
	pool, err := worker.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewServer(search.NewAsyncEngine(search.NewEngine(store), pool), cfg, "test", nil)
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultJSON[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	var text string
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		text = c.Text
	case *mcp.TextContent:
		text = c.Text
	default:
		t.Fatalf("unexpected content type %T", c)
	}
	var out T
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func TestServer_handleCrossReference(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{
		"query": "beginning",
	}))
	require.NoError(t, err)
	resp := resultJSON[models.SearchResponse](t, result)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Genesis", resp.Results[0].Book)
	assert.Equal(t, "John", resp.Results[1].Book)

	result, err = s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{
		"query": "beginning",
		"scope": "book",
		"books": []interface{}{"John"},
	}))
	require.NoError(t, err)
	resp = resultJSON[models.SearchResponse](t, result)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "New Testament", resp.Results[0].Volume)
}

func TestServer_handleCrossReference_validation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{"query": " a "}))
	requireCode(t, err, ErrorCodeEmptyQuery)

	_, err = s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{
		"query": "light",
		"scope": "selected",
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{
		"query": "light",
		"scope": "everywhere",
	}))
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleCrossReference(ctx, mcp.CallToolRequest{})
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestServer_handleProximity(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleProximity(ctx, call("proximity_search", map[string]interface{}{
		"term1":        "God",
		"term2":        "light",
		"max_distance": float64(5),
	}))
	require.NoError(t, err)
	resp := resultJSON[models.SearchResponse](t, result)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, 3, resp.Results[0].Verse)

	result, err = s.handleProximity(ctx, call("proximity_search", map[string]interface{}{
		"term1":        "God",
		"term2":        "light",
		"max_distance": 4,
	}))
	require.NoError(t, err)
	resp = resultJSON[models.SearchResponse](t, result)
	assert.Equal(t, 0, resp.Total)
}

func TestServer_handleProximity_validation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleProximity(ctx, call("proximity_search", map[string]interface{}{"term1": "God"}))
	requireCode(t, err, ErrorCodeEmptyQuery)

	_, err = s.handleProximity(ctx, call("proximity_search", map[string]interface{}{
		"term1":        "God",
		"term2":        "light",
		"max_distance": float64(-1),
	}))
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestServer_handleWordFrequency(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleWordFrequency(ctx, call("word_frequency", map[string]interface{}{
		"terms": []interface{}{"the", "  "},
	}))
	require.NoError(t, err)
	resp := resultJSON[models.FrequencyResponse](t, result)
	assert.Equal(t, []string{"Genesis", "John"}, resp.Labels)
	assert.Equal(t, 6, resp.Table["Genesis"]["the"])
	assert.Equal(t, 2, resp.Table["John"]["the"])

	result, err = s.handleWordFrequency(ctx, call("word_frequency", map[string]interface{}{
		"terms": "earth, light",
		"book":  "Genesis",
	}))
	require.NoError(t, err)
	resp = resultJSON[models.FrequencyResponse](t, result)
	assert.Equal(t, "Genesis", resp.Book)
	assert.Equal(t, 1, resp.Table["1"]["earth"])
	assert.Equal(t, 2, resp.Table["1"]["light"])
	assert.Equal(t, 1, resp.Table["2"]["earth"])
	assert.NotContains(t, resp.Table["2"], "light")

	_, err = s.handleWordFrequency(ctx, call("word_frequency", map[string]interface{}{"terms": []interface{}{}}))
	requireCode(t, err, ErrorCodeEmptyQuery)
}

func TestServer_handleCorpusStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleCrossReference(ctx, call("cross_reference_search", map[string]interface{}{"query": "word"}))
	require.NoError(t, err)

	result, err := s.handleCorpusStatus(ctx, call("corpus_status", nil))
	require.NoError(t, err)
	status := resultJSON[struct {
		Volumes []corpus.VolumeStatus `json:"volumes"`
	}](t, result)
	require.Len(t, status.Volumes, 2)
	for _, v := range status.Volumes {
		assert.Equal(t, corpus.StateLoaded, v.State)
	}
}

func TestGetStringSlice(t *testing.T) {
	args := map[string]interface{}{
		"list":   []interface{}{"a", 1, "", "b"},
		"typed":  []string{"x", " "},
		"joined": "one, two,,",
	}
	assert.Equal(t, []string{"a", "b"}, getStringSlice(args, "list"))
	assert.Equal(t, []string{"x"}, getStringSlice(args, "typed"))
	assert.Equal(t, []string{"one", "two"}, getStringSlice(args, "joined"))
	assert.Nil(t, getStringSlice(args, "missing"))
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeInternalError, "boom", nil)
	assert.Equal(t, "MCP error -32603: boom", err.Error())
}
