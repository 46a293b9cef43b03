package app

import (
	"fmt"

	"dash/internal/domain"
)

// ============================================================
// Blocks
// ============================================================

func (a *App) GetBlock(id string) (*domain.Block, error) {
	return a.blocks.GetBlock(id)
}

func (a *App) ListBlocks(tabID, parentBlockID string) ([]domain.Block, error) {
	return a.blocks.ListBlocks(tabID, parentBlockID)
}

func (a *App) UpdateBlockContent(id, content string) error {
	return a.blocks.UpdateBlockContent(a.ctx, id, content)
}

func (a *App) LinkBlockFile(id, path string) error {
	return a.blocks.LinkBlockFile(a.ctx, id, path)
}

// ============================================================
// Embedded terminal editor
// ============================================================

// TerminalWrite sends input from xterm.js to the PTY.
func (a *App) TerminalWrite(data string) error {
	return a.term.Write(data)
}

// TerminalResize resizes the PTY.
func (a *App) TerminalResize(cols, rows int) error {
	return a.term.Resize(uint16(cols), uint16(rows))
}

// OpenBlockInEditor opens the block's backing file in the embedded
// terminal editor and watches it for live preview updates.
func (a *App) OpenBlockInEditor(blockID string) error {
	b, err := a.blocks.GetBlock(blockID)
	if err != nil {
		return err
	}
	if b.FilePath == "" {
		return fmt.Errorf("block %s has no backing file", blockID)
	}

	if a.watch != nil {
		a.watch.Watch(blockID, b.FilePath)
	}

	return a.term.OpenBlockFile(blockID, b.FilePath)
}

// CloseEditor closes the embedded terminal session.
func (a *App) CloseEditor() {
	if id := a.term.EditingBlock(); id != "" && a.watch != nil {
		a.watch.Unwatch(id)
	}
	a.term.Close()
}

// onEditorExit pulls the final file content into the block after the
// editor process ends.
func (a *App) onEditorExit(blockID string) {
	b, err := a.blocks.GetBlock(blockID)
	if err != nil || b.FilePath == "" {
		return
	}
	if err := a.blocks.SyncBlockFromFile(a.ctx, blockID); err != nil {
		return
	}
	if a.watch != nil {
		a.watch.Unwatch(blockID)
	}
}
