package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"dash/internal/domain"
	"dash/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// EventEmitter is the slice of the event API the MCP server needs.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Server exposes the dashboard to AI agents over MCP: tools for
// workspace navigation and block manipulation, plus resources that
// render the canvas layout.
type Server struct {
	mcp     *server.MCPServer
	emitter EventEmitter

	workspaces *service.WorkspaceService
	tabs       *service.TabService
	blocks     *service.BlockService
	tables     *service.TableService

	// active tab context (set by set_active_tab tool)
	activeTabID string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter    EventEmitter
	Workspaces *service.WorkspaceService
	Tabs       *service.TabService
	Blocks     *service.BlockService
	Tables     *service.TableService
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		emitter:    deps.Emitter,
		workspaces: deps.Workspaces,
		tabs:       deps.Tabs,
		blocks:     deps.Blocks,
		tables:     deps.Tables,
	}

	s.mcp = server.NewMCPServer(
		"dash-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerNavigationTools()
	s.registerBlockTools()
	s.registerTableTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// emitBlocksChanged notifies the frontend that blocks have changed on a tab.
func (s *Server) emitBlocksChanged(ctx context.Context, tabID string) {
	s.emitter.Emit(ctx, "mcp:blocks-changed", map[string]string{"tabId": tabID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveTabID returns the tabId from tool args or falls back to the
// active tab.
func (s *Server) resolveTabID(args map[string]any) (string, error) {
	if tid, ok := args["tabId"].(string); ok && tid != "" {
		return tid, nil
	}
	if s.activeTabID != "" {
		return s.activeTabID, nil
	}
	return "", fmt.Errorf("no tabId provided and no active tab set (use set_active_tab first)")
}

// getBlockForTool retrieves a block and validates it exists.
func (s *Server) getBlockForTool(args map[string]any) (*domain.Block, error) {
	blockID, ok := args["blockId"].(string)
	if !ok || blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	return s.blocks.GetBlock(blockID)
}
