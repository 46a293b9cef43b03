package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dash/internal/domain"
)

// BlockService manages the lifecycle of canvas blocks.
type BlockService struct {
	store   domain.BlockStore
	dataDir string
	emitter EventEmitter
}

// NewBlockService creates a BlockService.
func NewBlockService(store domain.BlockStore, dataDir string, emitter EventEmitter) *BlockService {
	return &BlockService{store: store, dataDir: dataDir, emitter: emitter}
}

// CreateBlock creates a new block in a tab's canvas scope. When position is
// negative the block goes to the end of the canvas: one row below the
// current bottom, column 0.
func (s *BlockService) CreateBlock(ctx context.Context, tabID, parentBlockID string, blockType domain.BlockType, position float64) (*domain.Block, error) {
	if !domain.ValidBlockType(blockType) {
		return nil, fmt.Errorf("unknown block type %q", blockType)
	}
	if position < 0 {
		bottom, err := s.bottomRow(tabID, parentBlockID)
		if err != nil {
			return nil, err
		}
		position = bottom
	}

	b := &domain.Block{
		ID:            uuid.New().String(),
		TabID:         tabID,
		ParentBlockID: parentBlockID,
		Type:          blockType,
		Content:       domain.DefaultContent(blockType),
		Position:      position,
		Column:        0,
	}

	if blockType == domain.BlockTypeText {
		path, err := s.createBackingFile(tabID, b.ID, ".md", "")
		if err != nil {
			return nil, err
		}
		b.FilePath = path
	}

	if err := s.store.CreateBlock(b); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	s.emitter.Emit(ctx, "block:created", b)
	return b, nil
}

// bottomRow returns the row index below the scope's lowest block.
func (s *BlockService) bottomRow(tabID, parentBlockID string) (float64, error) {
	blocks, err := s.store.ListBlocks(tabID, parentBlockID)
	if err != nil {
		return 0, fmt.Errorf("find bottom row: %w", err)
	}
	bottom := -1
	for _, b := range blocks {
		if r := b.Row(); r > bottom {
			bottom = r
		}
	}
	return float64(bottom + 1), nil
}

// GetBlock returns a block by ID.
func (s *BlockService) GetBlock(id string) (*domain.Block, error) {
	return s.store.GetBlock(id)
}

// ListBlocks returns the blocks of one canvas scope.
func (s *BlockService) ListBlocks(tabID, parentBlockID string) ([]domain.Block, error) {
	return s.store.ListBlocks(tabID, parentBlockID)
}

// UpdateBlockPosition applies a placement patch after range-checking it.
func (s *BlockService) UpdateBlockPosition(ctx context.Context, id string, patch domain.PositionPatch) (*domain.Block, error) {
	if patch.Column != nil && (*patch.Column < 0 || *patch.Column >= domain.MaxColumns) {
		return nil, fmt.Errorf("column %d out of range", *patch.Column)
	}
	if patch.Position != nil && *patch.Position < 0 {
		return nil, fmt.Errorf("position %v out of range", *patch.Position)
	}
	return s.store.UpdateBlockPosition(id, patch)
}

// UpdateBlockContent replaces a block's content payload. Text blocks also
// write their backing file so external editors stay in sync.
func (s *BlockService) UpdateBlockContent(ctx context.Context, id, content string) error {
	b, err := s.store.GetBlock(id)
	if err != nil {
		return err
	}
	b.Content = content
	if b.Type == domain.BlockTypeText && b.FilePath != "" {
		if err := os.WriteFile(b.FilePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("write backing file: %w", err)
		}
	}
	if err := s.store.UpdateBlock(b); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "block:content-updated", map[string]string{
		"blockId": id,
		"content": content,
	})
	return nil
}

// SyncBlockFromFile pulls the backing file's current content into the
// block without rewriting the file. Used after an external editor
// session ends.
func (s *BlockService) SyncBlockFromFile(ctx context.Context, id string) error {
	b, err := s.store.GetBlock(id)
	if err != nil {
		return err
	}
	if b.FilePath == "" {
		return fmt.Errorf("block %s has no backing file", id)
	}
	data, err := os.ReadFile(b.FilePath)
	if err != nil {
		return fmt.Errorf("read backing file: %w", err)
	}
	b.Content = strings.TrimSpace(string(data))
	if err := s.store.UpdateBlock(b); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "block:content-updated", map[string]string{
		"blockId": id,
		"content": b.Content,
	})
	return nil
}

// DeleteBlock removes a block. Section blocks take their nested blocks
// with them; backing files are removed from disk.
func (s *BlockService) DeleteBlock(ctx context.Context, id string) error {
	b, err := s.store.GetBlock(id)
	if err != nil {
		return err
	}
	if b.Type == domain.BlockTypeSection {
		nested, err := s.store.ListBlocks(b.TabID, b.ID)
		if err != nil {
			return fmt.Errorf("list nested blocks: %w", err)
		}
		for _, n := range nested {
			if n.FilePath != "" {
				_ = os.Remove(n.FilePath)
			}
			if err := s.store.DeleteBlock(n.ID); err != nil {
				return fmt.Errorf("delete nested block %s: %w", n.ID, err)
			}
		}
	}
	if b.FilePath != "" {
		_ = os.Remove(b.FilePath)
	}
	if err := s.store.DeleteBlock(id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "block:deleted", map[string]string{"blockId": id})
	return nil
}

// DeleteBlocksByTab removes all blocks of a tab and their backing files.
func (s *BlockService) DeleteBlocksByTab(tabID string) error {
	blocks, _ := s.store.ListBlocks(tabID, "")
	for _, b := range blocks {
		if b.FilePath != "" {
			_ = os.Remove(b.FilePath)
		}
	}
	return s.store.DeleteBlocksByTab(tabID)
}

// LinkBlockFile points a file block at a path on disk and pulls its
// current content into the DB copy.
func (s *BlockService) LinkBlockFile(ctx context.Context, id, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("file not found: %w", err)
	}
	b, err := s.store.GetBlock(id)
	if err != nil {
		return err
	}
	b.FilePath = absPath
	return s.store.UpdateBlock(b)
}

// createBackingFile creates the on-disk file behind a text block.
func (s *BlockService) createBackingFile(tabID, blockID, ext, initial string) (string, error) {
	dir := filepath.Join(s.dataDir, tabID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create block dir: %w", err)
	}
	path := filepath.Join(dir, blockID+ext)
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		return "", fmt.Errorf("create block file: %w", err)
	}
	return path, nil
}
