package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	scorer  *core.ArtifactManager
	mgr     contract.StoreManager
}

func (h *toolHandler) handleScoreArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := h.scorer.ScoreURLs(ctx, []string{url}, 1, h.baseCfg.ConfigParams())
	if err := result.Err(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(outwriter.NewArtifactView(result.Records[0]))
}

func (h *toolHandler) handleGetArtifact(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := core.GetArtifact(h.mgr, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(outwriter.NewArtifactView(record))
}

func (h *toolHandler) handleListArtifacts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.Limit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}
	if limit <= 0 {
		limit = contract.DefaultLimit
	}

	records, err := core.ListArtifacts(h.mgr, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	views := make([]outwriter.ArtifactView, len(records))
	for i, r := range records {
		views[i] = outwriter.NewArtifactView(r)
	}
	return jsonResult(views)
}

func (h *toolHandler) handleDescribeMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(outwriter.BuildMetricsRenderModel(h.baseCfg))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
