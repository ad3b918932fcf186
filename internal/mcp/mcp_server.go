// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the mlscore MCP server without starting it.
// The scorer is injected so tests can replace the upstream harvesters.
func NewMCPServer(baseCfg *contract.Config, scorer *core.ArtifactManager, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"mlscore Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		scorer:  scorer,
		mgr:     mgr,
	}

	// --- 1. Tool: score_artifact ---
	s.AddTool(mcp.NewTool("score_artifact",
		mcp.WithDescription("Score a Hugging Face model, Hugging Face dataset or GitHub repository by URL."),
		mcp.WithString("url", mcp.Description("Artifact URL or package URL, e.g. https://huggingface.co/google-bert/bert-base-uncased or pkg:github/pallets/flask."), mcp.Required()),
	), h.handleScoreArtifact)

	// --- 2. Tool: get_artifact ---
	s.AddTool(mcp.NewTool("get_artifact",
		mcp.WithDescription("Fetch a previously scored artifact by its ID."),
		mcp.WithString("id", mcp.Description("Artifact ID returned by score_artifact."), mcp.Required()),
	), h.handleGetArtifact)

	// --- 3. Tool: list_artifacts ---
	s.AddTool(mcp.NewTool("list_artifacts",
		mcp.WithDescription("List the most recently scored artifacts."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of artifacts to return.")),
	), h.handleListArtifacts)

	// --- 4. Tool: describe_metrics ---
	s.AddTool(mcp.NewTool("describe_metrics",
		mcp.WithDescription("Describe the scoring dimensions, weights and device budgets."),
	), h.handleDescribeMetrics)

	return s
}

// StartMCPServer starts the mlscore MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	scorer := core.NewPipeline(baseCfg, mgr, harvest.Endpoints{})
	s := NewMCPServer(baseCfg, scorer, mgr)
	return server.ServeStdio(s)
}
