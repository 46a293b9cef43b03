package mcpserver

import (
	"context"
	"fmt"

	"dash/internal/domain"
	"dash/internal/layout"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBlockTools() {
	// ── create_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_block",
		mcp.WithDescription("Create a new block on the canvas. It is appended to the bottom unless a position is provided."),
		mcp.WithString("type",
			mcp.Description("Block type: text, table, gallery, file, task, section"),
			mcp.Required(),
		),
		mcp.WithString("tabId",
			mcp.Description("Tab ID (optional, defaults to active tab)"),
		),
		mcp.WithNumber("position", mcp.Description("Row position (optional, appends if omitted)")),
		mcp.WithString("content", mcp.Description("Initial content for the block (optional)")),
	), s.handleCreateBlock)

	// ── update_block_content ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_content",
		mcp.WithDescription("Update the content of an existing block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content"), mcp.Required()),
	), s.handleUpdateBlockContent)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks on a tab, optionally filtered by type"),
		mcp.WithString("tabId", mcp.Description("Tab ID (optional, defaults to active tab)")),
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block. Section blocks take their nested blocks with them."),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to an explicit row position and column"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("position", mcp.Description("New row position"), mcp.Required()),
		mcp.WithNumber("column", mcp.Description("New column (0-2)"), mcp.Required()),
	), s.handleMoveBlock)

	// ── drop_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drop_block",
		mcp.WithDescription("Drop one block onto another, placing it the same way a canvas drag would (joining the target's row or displacing a sibling)"),
		mcp.WithString("blockId", mcp.Description("Block ID to move"), mcp.Required()),
		mcp.WithString("overBlockId", mcp.Description("Block ID to drop onto"), mcp.Required()),
	), s.handleDropBlock)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockType, _ := args["type"].(string)
	if blockType == "" {
		return nil, fmt.Errorf("type is required")
	}
	if !domain.ValidBlockType(domain.BlockType(blockType)) {
		return nil, fmt.Errorf("unknown block type %q", blockType)
	}

	tabID, err := s.resolveTabID(args)
	if err != nil {
		return nil, err
	}

	position := -1.0
	if p, ok := args["position"].(float64); ok {
		position = p
	}

	block, err := s.blocks.CreateBlock(ctx, tabID, "", domain.BlockType(blockType), position)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}

	if content, ok := args["content"].(string); ok && content != "" {
		if err := s.blocks.UpdateBlockContent(ctx, block.ID, content); err != nil {
			return nil, fmt.Errorf("set content: %w", err)
		}
		block.Content = content
	}

	s.emitBlocksChanged(ctx, tabID)
	return jsonResult(block)
}

func (s *Server) handleUpdateBlockContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}

	content, _ := args["content"].(string)
	if err := s.blocks.UpdateBlockContent(ctx, block.ID, content); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}

	s.emitBlocksChanged(ctx, block.TabID)
	return textResult(fmt.Sprintf("Block %s content updated", block.ID)), nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tabID, err := s.resolveTabID(args)
	if err != nil {
		return nil, err
	}

	blocks, err := s.blocks.ListBlocks(tabID, "")
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	filterType, _ := args["type"].(string)
	var summaries []blockSummary
	for _, b := range blocks {
		if filterType != "" && string(b.Type) != filterType {
			continue
		}
		summaries = append(summaries, summarizeBlock(b))
	}
	return jsonResult(summaries)
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}

	if err := s.blocks.DeleteBlock(ctx, block.ID); err != nil {
		return nil, fmt.Errorf("delete block: %w", err)
	}

	s.emitBlocksChanged(ctx, block.TabID)
	return textResult(fmt.Sprintf("Block %s deleted", block.ID)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	block, err := s.getBlockForTool(args)
	if err != nil {
		return nil, err
	}

	position, hasPos := args["position"].(float64)
	columnF, hasCol := args["column"].(float64)
	if !hasPos || !hasCol {
		return nil, fmt.Errorf("position and column are required")
	}
	column := int(columnF)

	patch := domain.PositionPatch{Position: &position, Column: &column}
	if _, err := s.blocks.UpdateBlockPosition(ctx, block.ID, patch); err != nil {
		return nil, fmt.Errorf("move block: %w", err)
	}

	s.emitBlocksChanged(ctx, block.TabID)
	return textResult(fmt.Sprintf("Block %s moved to position %.2f, column %d", block.ID, position, column)), nil
}

func (s *Server) handleDropBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	overID, _ := args["overBlockId"].(string)
	if blockID == "" || overID == "" {
		return nil, fmt.Errorf("blockId and overBlockId are required")
	}
	if blockID == overID {
		return textResult("Drop on self, nothing to do"), nil
	}

	dragged, err := s.blocks.GetBlock(blockID)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", blockID, err)
	}
	over, err := s.blocks.GetBlock(overID)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", overID, err)
	}
	if dragged.TabID != over.TabID || dragged.ParentBlockID != over.ParentBlockID {
		return nil, fmt.Errorf("blocks %s and %s are not on the same canvas", blockID, overID)
	}

	blocks, err := s.blocks.ListBlocks(dragged.TabID, dragged.ParentBlockID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	patches := layout.Resolve(*dragged, *over, layout.Rows(blocks))
	if len(patches) == 0 {
		return textResult("Placement is a no-op"), nil
	}
	for id, patch := range patches {
		if _, err := s.blocks.UpdateBlockPosition(ctx, id, patch); err != nil {
			return nil, fmt.Errorf("update block %s: %w", id, err)
		}
	}

	s.emitBlocksChanged(ctx, dragged.TabID)
	return textResult(fmt.Sprintf("Block %s dropped onto %s (%d blocks updated)", blockID, overID, len(patches))), nil
}

// ── Helper types ───────────────────────────────────────────

type blockSummary struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Position float64 `json:"position"`
	Column   int     `json:"column"`
	Preview  string  `json:"preview"` // first 200 chars of content
}

func summarizeBlock(b domain.Block) blockSummary {
	preview := b.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return blockSummary{
		ID:       b.ID,
		Type:     string(b.Type),
		Position: b.Position,
		Column:   b.EffectiveColumn(),
		Preview:  preview,
	}
}
