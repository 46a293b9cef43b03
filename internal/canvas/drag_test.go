package canvas

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"dash/internal/domain"
)

// fakeMutator records position updates and fails on demand.
type fakeMutator struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
}

func (m *fakeMutator) UpdateBlockPosition(_ context.Context, id string, patch domain.PositionPatch) (*domain.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, id)
	if m.failIDs[id] {
		return nil, fmt.Errorf("update %s: connection reset", id)
	}
	b := domain.Block{ID: id}
	if patch.Position != nil {
		b.Position = *patch.Position
	}
	if patch.Column != nil {
		b.Column = *patch.Column
	}
	return &b, nil
}

func (m *fakeMutator) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) Emit(_ context.Context, event string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func newTestController(blocks []domain.Block, fail ...string) (*DragController, *Store, *fakeMutator, *recordingSink, *SyncCoordinator) {
	store := NewStore()
	store.Refresh(blocks)
	mutator := &fakeMutator{failIDs: map[string]bool{}}
	for _, id := range fail {
		mutator.failIDs[id] = true
	}
	sink := &recordingSink{}
	coord := NewSyncCoordinator(store)
	ctrl := NewDragController(store, mutator, coord, sink)
	return ctrl, store, mutator, sink, coord
}

func TestDrag_StateMachine(t *testing.T) {
	ctrl, _, _, _, _ := newTestController([]domain.Block{tabBlock("a", 0, 0)})
	if ctrl.State() != StateIdle {
		t.Fatal("controller should start Idle")
	}
	if err := ctrl.Begin("a"); err != nil {
		t.Fatal(err)
	}
	if ctrl.State() != StateDragging {
		t.Error("expected Dragging after Begin")
	}
	ctrl.Cancel()
	if ctrl.State() != StateIdle {
		t.Error("expected Idle after Cancel")
	}
}

func TestDrag_BeginEmptyID(t *testing.T) {
	ctrl, _, _, _, _ := newTestController(nil)
	if err := ctrl.Begin(""); err == nil {
		t.Error("expected error for empty block id")
	}
}

func TestDrag_DropWithoutTargetCancels(t *testing.T) {
	ctrl, store, mutator, _, _ := newTestController([]domain.Block{tabBlock("a", 0, 0)})
	ctrl.Begin("a")
	outcome, err := ctrl.Drop(context.Background(), "")
	if err != nil || outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, err = %v; want cancelled, nil", outcome, err)
	}
	if len(mutator.callLog()) != 0 {
		t.Error("no persistence call expected")
	}
	if store.Blocks()[0].Column != 0 {
		t.Error("store must be untouched")
	}
}

func TestDrag_DropOnSelfCancels(t *testing.T) {
	ctrl, _, mutator, _, _ := newTestController([]domain.Block{tabBlock("a", 0, 0)})
	ctrl.Begin("a")
	outcome, _ := ctrl.Drop(context.Background(), "a")
	if outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want cancelled", outcome)
	}
	if len(mutator.callLog()) != 0 {
		t.Error("no persistence call expected")
	}
}

func TestDrag_SuccessfulDropAppliesAndPersists(t *testing.T) {
	blocks := []domain.Block{tabBlock("a", 0, 0), tabBlock("d", 2, 0)}
	ctrl, store, mutator, sink, _ := newTestController(blocks)

	ctrl.Begin("d")
	outcome, err := ctrl.Drop(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeDropped {
		t.Fatalf("outcome = %v, want dropped", outcome)
	}

	got, _ := findBlock(store.Blocks(), "d")
	if got.Position != 0 || got.Column != 1 {
		t.Errorf("d = (%v, %d), want (0, 1)", got.Position, got.Column)
	}
	if calls := mutator.callLog(); len(calls) != 1 || calls[0] != "d" {
		t.Errorf("calls = %v, want [d]", calls)
	}
	if len(sink.events) != 0 {
		t.Errorf("no events expected on success, got %v", sink.events)
	}
	if ctrl.State() != StateIdle {
		t.Error("controller should return to Idle")
	}
}

func TestDrag_DraggedBlockPersistsBeforeSiblings(t *testing.T) {
	// Full row: dropping d onto b displaces b, producing a sibling call
	// that must come after the dragged block's.
	blocks := []domain.Block{
		tabBlock("a", 0, 0), tabBlock("b", 0, 1), tabBlock("c", 0, 2),
		tabBlock("d", 1, 0),
	}
	ctrl, _, mutator, _, _ := newTestController(blocks)
	ctrl.Begin("d")
	if _, err := ctrl.Drop(context.Background(), "b"); err != nil {
		t.Fatal(err)
	}
	calls := mutator.callLog()
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want dragged + 1 sibling", calls)
	}
	if calls[0] != "d" {
		t.Errorf("first call = %s, want d", calls[0])
	}
}

func TestDrag_DraggedFailureRollsBack(t *testing.T) {
	blocks := []domain.Block{tabBlock("a", 0, 0), tabBlock("d", 2, 0)}
	ctrl, store, _, sink, _ := newTestController(blocks, "d")
	before := store.Blocks()

	ctrl.Begin("d")
	outcome, err := ctrl.Drop(context.Background(), "a")
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want cancelled", outcome)
	}
	if !reflect.DeepEqual(before, store.Blocks()) {
		t.Error("store not rolled back to pre-drag snapshot")
	}
	if len(sink.events) != 1 || sink.events[0] != "canvas:drop-failed" {
		t.Errorf("events = %v, want one canvas:drop-failed", sink.events)
	}
}

func TestDrag_SiblingFailureRollsBackEverything(t *testing.T) {
	// Partial failure: the dragged block persists but the displaced sibling
	// does not. The whole patch set is rolled back; no half-committed state.
	blocks := []domain.Block{
		tabBlock("a", 0, 0), tabBlock("b", 0, 1), tabBlock("c", 0, 2),
		tabBlock("d", 1, 0),
	}
	ctrl, store, _, sink, _ := newTestController(blocks, "b")
	before := store.Blocks()

	ctrl.Begin("d")
	if _, err := ctrl.Drop(context.Background(), "b"); err == nil {
		t.Fatal("expected aggregate failure")
	}
	if !reflect.DeepEqual(before, store.Blocks()) {
		t.Error("store not rolled back after sibling failure")
	}
	if len(sink.events) != 1 {
		t.Errorf("want a single aggregate notification, got %v", sink.events)
	}
}

func TestDrag_FailureReleasesSyncGuard(t *testing.T) {
	blocks := []domain.Block{tabBlock("a", 0, 0), tabBlock("d", 2, 0)}
	ctrl, _, _, _, coord := newTestController(blocks, "d")

	ctrl.Begin("d")
	ctrl.Drop(context.Background(), "a")

	if !coord.Refresh([]domain.Block{tabBlock("z", 0, 0)}) {
		t.Error("refresh should proceed after a rolled-back drop")
	}
}

func TestDrag_SuccessAcknowledgesSyncGuard(t *testing.T) {
	blocks := []domain.Block{tabBlock("a", 0, 0), tabBlock("d", 2, 0)}
	ctrl, _, _, _, coord := newTestController(blocks)

	ctrl.Begin("d")
	if _, err := ctrl.Drop(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if !coord.Refresh([]domain.Block{tabBlock("z", 0, 0)}) {
		t.Error("refresh should proceed once the drop is acknowledged")
	}
}

func TestValidatePatchSet(t *testing.T) {
	badCol := 3
	negPos := -1.0
	okCol := 2
	okPos := 4.0
	cases := []struct {
		name    string
		patch   domain.PositionPatch
		wantErr bool
	}{
		{"valid", domain.PositionPatch{Position: &okPos, Column: &okCol}, false},
		{"column too high", domain.PositionPatch{Column: &badCol}, true},
		{"negative position", domain.PositionPatch{Position: &negPos}, true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePatchSet(map[string]domain.PositionPatch{"x": tt.patch})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPatch) {
				t.Errorf("error %v should wrap ErrInvalidPatch", err)
			}
		})
	}
}
