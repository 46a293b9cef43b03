package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTableTools() {
	s.mcp.AddTool(mcp.NewTool("list_db_connections",
		mcp.WithDescription("List configured database connections"),
	), s.handleListConnections)

	s.mcp.AddTool(mcp.NewTool("refresh_table_block",
		mcp.WithDescription("Re-run a table block's query against its database connection and cache the result"),
		mcp.WithString("blockId", mcp.Description("Table block ID"), mcp.Required()),
	), s.handleRefreshTableBlock)

	s.mcp.AddTool(mcp.NewTool("get_table_result",
		mcp.WithDescription("Get the last cached query result for a table block"),
		mcp.WithString("blockId", mcp.Description("Table block ID"), mcp.Required()),
	), s.handleGetTableResult)
}

func (s *Server) handleListConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conns, err := s.tables.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	// DSNs stay server-side
	type connSummary struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Driver string `json:"driver"`
	}
	summaries := make([]connSummary, len(conns))
	for i, c := range conns {
		summaries[i] = connSummary{ID: c.ID, Name: c.Name, Driver: c.Driver}
	}
	return jsonResult(summaries)
}

func (s *Server) handleRefreshTableBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}
	result, err := s.tables.RefreshBlock(ctx, block.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh table block: %w", err)
	}
	s.emitBlocksChanged(ctx, block.TabID)
	return jsonResult(result)
}

func (s *Server) handleGetTableResult(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}
	result, err := s.tables.GetResult(block.ID)
	if err != nil {
		return nil, fmt.Errorf("get table result: %w", err)
	}
	return jsonResult(result)
}
