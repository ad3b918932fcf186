package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/internal/iocache"
	mcp_internal "github.com/huangsam/mlscore/internal/mcp"
	"github.com/huangsam/mlscore/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const flaskURL = "https://github.com/pallets/flask"

func newTestServer(t *testing.T, store *iocache.MockArtifactStore) *server.MCPServer {
	t.Helper()
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, flaskURL).Return(schema.RawMetadata{
		Kind:       schema.CodeKind,
		URL:        flaskURL,
		Identifier: "pallets/flask",
		Payload:    map[string]any{"full_name": "pallets/flask", "license": map[string]any{"spdx_id": "BSD-3-Clause"}},
	}).Maybe()

	var opts []core.ManagerOption
	mgr := &iocache.MockStoreManager{}
	if store != nil {
		opts = append(opts, core.WithArtifactStore(store))
		mgr.On("GetArtifactStore").Return(store)
	} else {
		mgr.On("GetArtifactStore").Return(nil)
	}
	opts = append(opts, core.WithIDGenerator(func() string { return "abc123" }))

	scorer := core.NewArtifactManager(h, nil, nil, opts...)
	return mcp_internal.NewMCPServer(&contract.Config{Limit: 5}, scorer, mgr)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("score_artifact missing url", func(t *testing.T) {
		res := callTool(t, s, "score_artifact", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
	})

	t.Run("score_artifact invalid url", func(t *testing.T) {
		res := callTool(t, s, "score_artifact", map[string]any{"url": "not-a-url"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "scoring failed")
		assert.Contains(t, resultText(res), "invalid_input")
	})

	t.Run("get_artifact missing id", func(t *testing.T) {
		res := callTool(t, s, "get_artifact", map[string]any{})
		assert.True(t, res.IsError)
	})

	t.Run("get_artifact without store", func(t *testing.T) {
		res := callTool(t, s, "get_artifact", map[string]any{"id": "abc123"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "artifact store is not configured")
	})
}

func TestMCPServerHandlers_ScoreArtifact(t *testing.T) {
	store := &iocache.MockArtifactStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(3), nil)
	store.On("SaveArtifact", int64(3), mock.MatchedBy(func(r schema.ArtifactRecord) bool { return r.ID == "abc123" })).Return(nil)
	store.On("EndRun", int64(3), mock.Anything, 1).Return(nil)

	res := callTool(t, newTestServer(t, store), "score_artifact", map[string]any{"url": flaskURL})
	require.False(t, res.IsError, resultText(res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &decoded))
	assert.Equal(t, "abc123", decoded["id"])
	assert.Equal(t, "flask", decoded["name"])
	assert.Equal(t, "code", decoded["kind"])
	assert.Contains(t, decoded, "label")
	store.AssertExpectations(t)
}

func TestMCPServerHandlers_GetArtifact(t *testing.T) {
	store := &iocache.MockArtifactStore{}
	store.On("GetArtifact", "abc123").Return(schema.ArtifactRecord{ID: "abc123", Name: "flask", Kind: schema.CodeKind}, nil)
	store.On("GetArtifact", "nope").Return(schema.ArtifactRecord{}, contract.NewError(contract.CodeNotFound, "artifact nope not found"))
	s := newTestServer(t, store)

	res := callTool(t, s, "get_artifact", map[string]any{"id": "abc123"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"name": "flask"`)

	res = callTool(t, s, "get_artifact", map[string]any{"id": "nope"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "not found")
}

func TestMCPServerHandlers_ListArtifacts(t *testing.T) {
	store := &iocache.MockArtifactStore{}
	store.On("ListArtifacts", 5).Return([]schema.ArtifactRecord{{ID: "a"}, {ID: "b"}}, nil).Once()
	store.On("ListArtifacts", 1).Return([]schema.ArtifactRecord{{ID: "a"}}, nil).Once()
	s := newTestServer(t, store)

	var decoded []map[string]any
	res := callTool(t, s, "list_artifacts", map[string]any{})
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &decoded))
	assert.Len(t, decoded, 2)

	res = callTool(t, s, "list_artifacts", map[string]any{"limit": 1.0})
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &decoded))
	assert.Len(t, decoded, 1)
	store.AssertExpectations(t)
}

func TestMCPServerHandlers_DescribeMetrics(t *testing.T) {
	res := callTool(t, newTestServer(t, nil), "describe_metrics", nil)
	require.False(t, res.IsError)

	var model schema.MetricsRenderModel
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &model))
	assert.Len(t, model.Dimensions, len(schema.AllDimensions))
	assert.Contains(t, model.Formula, "0.15*license")
}
