package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNavigationTools() {
	s.mcp.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List all workspaces"),
	), s.handleListWorkspaces)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects in a workspace"),
		mcp.WithString("workspaceId", mcp.Description("Workspace ID"), mcp.Required()),
	), s.handleListProjects)

	s.mcp.AddTool(mcp.NewTool("list_tabs",
		mcp.WithDescription("List tabs in a project"),
		mcp.WithString("projectId", mcp.Description("Project ID"), mcp.Required()),
	), s.handleListTabs)

	s.mcp.AddTool(mcp.NewTool("create_tab",
		mcp.WithDescription("Create a new tab in a project"),
		mcp.WithString("projectId", mcp.Description("Project ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Tab name"), mcp.Required()),
		mcp.WithString("parentTabId", mcp.Description("Parent tab ID for a nested tab (optional)")),
	), s.handleCreateTab)

	s.mcp.AddTool(mcp.NewTool("set_active_tab",
		mcp.WithDescription("Set the active tab used as the default for block tools"),
		mcp.WithString("tabId", mcp.Description("Tab ID"), mcp.Required()),
	), s.handleSetActiveTab)
}

func (s *Server) handleListWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := s.workspaces.ListWorkspaces()
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return jsonResult(workspaces)
}

func (s *Server) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	workspaceID, _ := args["workspaceId"].(string)
	if workspaceID == "" {
		return nil, fmt.Errorf("workspaceId is required")
	}
	projects, err := s.workspaces.ListProjects(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return jsonResult(projects)
}

func (s *Server) handleListTabs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	projectID, _ := args["projectId"].(string)
	if projectID == "" {
		return nil, fmt.Errorf("projectId is required")
	}
	tabs, err := s.tabs.ListTabs(projectID)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	return jsonResult(tabs)
}

func (s *Server) handleCreateTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	projectID, _ := args["projectId"].(string)
	name, _ := args["name"].(string)
	if projectID == "" || name == "" {
		return nil, fmt.Errorf("projectId and name are required")
	}
	parentTabID, _ := args["parentTabId"].(string)

	tab, err := s.tabs.CreateTab(ctx, projectID, parentTabID, name)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	return jsonResult(tab)
}

func (s *Server) handleSetActiveTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tabID, _ := args["tabId"].(string)
	if tabID == "" {
		return nil, fmt.Errorf("tabId is required")
	}
	if _, err := s.tabs.GetTab(tabID); err != nil {
		return nil, fmt.Errorf("get tab: %w", err)
	}
	s.activeTabID = tabID
	return textResult(fmt.Sprintf("Active tab set to %s", tabID)), nil
}
