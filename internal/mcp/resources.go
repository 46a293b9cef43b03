package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dash/internal/layout"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── dash://workspaces ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"dash://workspaces",
		"All Workspaces",
		mcp.WithMIMEType("application/json"),
	), s.handleWorkspacesResource)

	// ── dash://tab/{tabId}/canvas ──────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"dash://tab/{tabId}/canvas",
			"Canvas of a Tab",
		),
		s.handleCanvasResource,
	)
}

func (s *Server) handleWorkspacesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workspaces, err := s.workspaces.ListWorkspaces()
	if err != nil {
		return nil, err
	}

	type workspaceSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	var summaries []workspaceSummary
	for _, w := range workspaces {
		summaries = append(summaries, workspaceSummary{ID: w.ID, Name: w.Name})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dash://workspaces",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// handleCanvasResource renders a tab's blocks grouped into rows, the
// same shape the frontend renders.
func (s *Server) handleCanvasResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	tabID := extractTabIDFromURI(uri)
	if tabID == "" {
		return nil, fmt.Errorf("could not extract tabId from URI: %s", uri)
	}

	blocks, err := s.blocks.ListBlocks(tabID, "")
	if err != nil {
		return nil, err
	}

	type rowView struct {
		Index      int            `json:"index"`
		MaxColumns int            `json:"maxColumns"`
		Blocks     []blockSummary `json:"blocks"`
	}

	rows := layout.Rows(blocks)
	views := make([]rowView, len(rows))
	for i, r := range rows {
		v := rowView{Index: r.Index, MaxColumns: r.MaxColumns}
		for _, b := range r.Blocks {
			v.Blocks = append(v.Blocks, summarizeBlock(b))
		}
		views[i] = v
	}

	data, _ := json.MarshalIndent(views, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractTabIDFromURI pulls the tab id out of dash://tab/{tabId}/canvas.
func extractTabIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "dash://tab/")
	if !ok {
		return ""
	}
	tabID, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return tabID
}
