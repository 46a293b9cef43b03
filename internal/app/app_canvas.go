package app

import (
	"fmt"

	"dash/internal/canvas"
	"dash/internal/domain"
	"dash/internal/layout"
)

// canvasSession is the in-memory canvas for the tab the user is
// looking at: an optimistic block store, the refresh coordinator, and
// the drag controller, all scoped to one tab.
type canvasSession struct {
	tabID     string
	projectID string
	store     *canvas.Store
	coord     *canvas.SyncCoordinator
	drag      *canvas.DragController
}

// session returns the active canvas session, or an error when no tab
// is open.
func (a *App) session() (*canvasSession, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	if a.canvasSession == nil {
		return nil, fmt.Errorf("no tab open")
	}
	return a.canvasSession, nil
}

// OpenTab loads a tab's blocks into a fresh canvas session and starts
// watching the tab for external changes.
func (a *App) OpenTab(tabID string) ([]layout.Row, error) {
	tab, err := a.tabs.GetTab(tabID)
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	blocks, err := a.blocks.ListBlocks(tabID, "")
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	store := canvas.NewStore()
	store.Refresh(blocks)
	coord := canvas.NewSyncCoordinator(store)

	sess := &canvasSession{
		tabID:     tabID,
		projectID: tab.ProjectID,
		store:     store,
		coord:     coord,
		drag:      canvas.NewDragController(store, a.blocks, coord, wailsEmitter{ctx: a.ctx}),
	}

	a.sessionMu.Lock()
	a.canvasSession = sess
	a.sessionMu.Unlock()

	if a.tabWatcher != nil {
		a.tabWatcher.SetTab(tabID, tab.ProjectID)
	}

	return store.Rows(), nil
}

// CanvasRows returns the active canvas grouped into rows for rendering.
func (a *App) CanvasRows() ([]layout.Row, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	return sess.store.Rows(), nil
}

// BeginDrag starts a drag gesture for the given block.
func (a *App) BeginDrag(blockID string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	return sess.drag.Begin(blockID)
}

// DropBlock ends the gesture over the given block and reports whether
// the drop landed or was cancelled.
func (a *App) DropBlock(overBlockID string) (string, error) {
	sess, err := a.session()
	if err != nil {
		return "", err
	}
	outcome, err := sess.drag.Drop(a.ctx, overBlockID)
	return string(outcome), err
}

// CancelDrag abandons the gesture with no mutation.
func (a *App) CancelDrag() error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	sess.drag.Cancel()
	return nil
}

// AddBlock creates a block at the bottom of the canvas. The block is
// shown immediately under a draft id and swapped for the persisted one
// once the write lands; a failed write removes it again.
func (a *App) AddBlock(blockType string) ([]layout.Row, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}

	// The draft gets the bottom-row position up front so the optimistic
	// preview already sits where the persisted block will land, instead
	// of flashing through (0,0).
	position := nextRowPosition(sess.store.Blocks())
	draft := domain.Block{
		TabID:    sess.tabID,
		Type:     domain.BlockType(blockType),
		Content:  domain.DefaultContent(domain.BlockType(blockType)),
		Position: position,
	}
	tempID := sess.store.InsertOptimistic(draft)
	seq := sess.coord.NoteLocalMutation()

	created, err := a.blocks.CreateBlock(a.ctx, sess.tabID, "", domain.BlockType(blockType), position)
	if err != nil {
		sess.store.DiscardOptimistic(tempID)
		sess.coord.Abandon(seq)
		return nil, fmt.Errorf("add block: %w", err)
	}

	if err := sess.store.ResolveOptimistic(tempID, *created); err != nil {
		return nil, fmt.Errorf("add block: %w", err)
	}
	sess.coord.Acknowledge(seq)

	return sess.store.Rows(), nil
}

// nextRowPosition is the row index below the canvas's lowest block, so an
// appended block starts a fresh row instead of joining an occupied one.
func nextRowPosition(blocks []domain.Block) float64 {
	bottom := -1
	for _, b := range blocks {
		if r := b.Row(); r > bottom {
			bottom = r
		}
	}
	return float64(bottom + 1)
}

// RemoveBlock deletes a block and refreshes the canvas from storage.
func (a *App) RemoveBlock(blockID string) ([]layout.Row, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	if err := a.blocks.DeleteBlock(a.ctx, blockID); err != nil {
		return nil, fmt.Errorf("remove block: %w", err)
	}
	blocks, err := a.blocks.ListBlocks(sess.tabID, "")
	if err != nil {
		return nil, err
	}
	sess.store.Refresh(blocks)
	return sess.store.Rows(), nil
}

// refreshActiveCanvas reloads the active tab's blocks from storage and
// offers them to the coordinator, which drops the batch while a local
// mutation is still unacknowledged. Returns true when the canvas
// actually changed.
func (a *App) refreshActiveCanvas() bool {
	sess, err := a.session()
	if err != nil {
		return false
	}
	blocks, err := a.blocks.ListBlocks(sess.tabID, "")
	if err != nil {
		return false
	}
	return sess.coord.Refresh(blocks)
}
