package canvas

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"dash/internal/domain"
	"dash/internal/layout"
)

// Mutator is the slice of the block persistence API the drag controller
// needs. Implementations must make UpdateBlockPosition idempotent.
type Mutator interface {
	UpdateBlockPosition(ctx context.Context, id string, patch domain.PositionPatch) (*domain.Block, error)
}

// EventSink receives user-facing notifications from the controller.
// The app layer forwards these to the frontend as runtime events.
type EventSink interface {
	Emit(ctx context.Context, event string, data any)
}

// DragState is the controller's position in the gesture state machine.
type DragState int

const (
	StateIdle DragState = iota
	StateDragging
)

// ErrInvalidPatch marks a placement the resolver should never have
// produced. It is a programmer error, not user input, so it aborts the
// gesture silently.
var ErrInvalidPatch = errors.New("canvas: patch outside allowed range")

// DropOutcome reports how a drop ended.
type DropOutcome string

const (
	OutcomeDropped   DropOutcome = "dropped"
	OutcomeCancelled DropOutcome = "cancelled"
)

// DragController drives one drag gesture: Idle → Dragging → (Dropped |
// Cancelled) → Idle. Dropping resolves the placement, applies it to the
// optimistic store, then persists — dragged block first, then displaced
// siblings in parallel. Any persistence failure rolls the whole patch set
// back to the pre-drag snapshot.
//
// A second gesture may begin before the first one's persistence resolves;
// drags are not serialized and the last writer wins.
type DragController struct {
	mu      sync.Mutex
	store   *Store
	mutator Mutator
	coord   *SyncCoordinator
	events  EventSink

	state   DragState
	dragged string // block id while Dragging
}

func NewDragController(store *Store, mutator Mutator, coord *SyncCoordinator, events EventSink) *DragController {
	return &DragController{store: store, mutator: mutator, coord: coord, events: events}
}

// State returns the current gesture state.
func (c *DragController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin enters Dragging for the given block. No store mutation happens
// until the drop.
func (c *DragController) Begin(blockID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if blockID == "" {
		return fmt.Errorf("begin drag: empty block id")
	}
	c.state = StateDragging
	c.dragged = blockID
	return nil
}

// Cancel abandons the gesture with no mutation.
func (c *DragController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.dragged = ""
}

// Drop ends the gesture over the block with id overID. An empty overID, a
// drop on self, or a resolver no-op all cancel cleanly.
func (c *DragController) Drop(ctx context.Context, overID string) (DropOutcome, error) {
	c.mu.Lock()
	draggedID := c.dragged
	c.state = StateIdle
	c.dragged = ""
	c.mu.Unlock()

	if draggedID == "" || overID == "" || draggedID == overID {
		return OutcomeCancelled, nil
	}

	blocks := c.store.Blocks()
	dragged, ok := findBlock(blocks, draggedID)
	if !ok {
		return OutcomeCancelled, nil
	}
	over, ok := findBlock(blocks, overID)
	if !ok {
		return OutcomeCancelled, nil
	}

	patches := layout.Resolve(dragged, over, layout.Rows(blocks))
	if len(patches) == 0 {
		return OutcomeCancelled, nil
	}
	if err := validatePatchSet(patches); err != nil {
		return OutcomeCancelled, err
	}

	snap := c.store.Snapshot()
	c.store.ApplyPatchSet(patches)
	seq := c.coord.NoteLocalMutation()

	if err := c.persist(ctx, draggedID, patches); err != nil {
		c.store.Rollback(snap)
		c.coord.Abandon(seq)
		c.events.Emit(ctx, "canvas:drop-failed", map[string]string{
			"blockId": draggedID,
			"error":   err.Error(),
		})
		return OutcomeCancelled, fmt.Errorf("drop block %s: %w", draggedID, err)
	}

	c.coord.Acknowledge(seq)
	return OutcomeDropped, nil
}

// persist writes the patch set through the mutator: the dragged block is
// awaited first so sibling updates never race an unresolved dragged-block
// update. Sibling calls run in parallel; their failures are reported as a
// single aggregate error and treated as a full failure.
func (c *DragController) persist(ctx context.Context, draggedID string, patches layout.PatchSet) error {
	draggedPatch, ok := patches[draggedID]
	if !ok {
		return fmt.Errorf("patch set missing dragged block %s", draggedID)
	}
	if _, err := c.mutator.UpdateBlockPosition(ctx, draggedID, draggedPatch); err != nil {
		return fmt.Errorf("update dragged block: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for id, patch := range patches {
		if id == draggedID {
			continue
		}
		wg.Add(1)
		go func(id string, patch domain.PositionPatch) {
			defer wg.Done()
			if _, err := c.mutator.UpdateBlockPosition(ctx, id, patch); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("update sibling %s: %w", id, err))
				mu.Unlock()
			}
		}(id, patch)
	}
	wg.Wait()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validatePatchSet rejects columns outside [0, MaxColumns) and positions
// that are not finite non-negative numbers. A failure here can only come
// from a resolver defect, never from user input.
func validatePatchSet(patches layout.PatchSet) error {
	for id, p := range patches {
		if p.Column != nil && (*p.Column < 0 || *p.Column >= domain.MaxColumns) {
			return fmt.Errorf("%w: block %s column %d", ErrInvalidPatch, id, *p.Column)
		}
		if p.Position != nil {
			pos := *p.Position
			if pos < 0 || math.IsNaN(pos) || math.IsInf(pos, 0) {
				return fmt.Errorf("%w: block %s position %v", ErrInvalidPatch, id, pos)
			}
		}
	}
	return nil
}

func findBlock(blocks []domain.Block, id string) (domain.Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Block{}, false
}
