// Package canvas holds the client-side half of the block canvas: an
// optimistic in-memory block collection, the drag state machine, and the
// coordinator that keeps server refreshes from clobbering local edits.
package canvas

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"dash/internal/domain"
	"dash/internal/layout"
)

// entry wraps a block with its optimistic bookkeeping. A non-empty tempID
// marks a pending block: created locally, not yet confirmed by the store.
// Pending-ness is tracked here explicitly so no caller ever has to sniff
// id prefixes.
type entry struct {
	block  domain.Block
	tempID string
}

// Store is the in-memory block collection for one canvas scope. Every
// operation is synchronous and touches nothing but local state; persistence
// happens elsewhere. Mutations may arrive from the frontend binding thread
// and the refresh poller, hence the mutex.
type Store struct {
	mu      sync.Mutex
	entries []entry
	tempSeq uint64
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot is an opaque copy of the store's state, taken before a
// speculative mutation so a failed persistence call can restore it.
type Snapshot struct {
	entries []entry
}

// Blocks returns the current blocks in render order.
func (s *Store) Blocks() []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Block, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.block
	}
	return out
}

// Rows groups the current blocks into canvas rows.
func (s *Store) Rows() []layout.Row {
	return layout.Rows(s.Blocks())
}

// Pending reports whether the block with the given id is still awaiting
// server confirmation.
func (s *Store) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.block.ID == id {
			return e.tempID != ""
		}
	}
	return false
}

// InsertOptimistic appends a locally created block and returns its temp id.
// The block is visible immediately; ResolveOptimistic swaps in the
// authoritative copy once the create call returns. Temp ids are unique for
// the session and never reused.
func (s *Store) InsertOptimistic(b domain.Block) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempSeq++
	tempID := fmt.Sprintf("draft-%d-%s", s.tempSeq, uuid.NewString())
	b.ID = tempID
	s.entries = append(s.entries, entry{block: b, tempID: tempID})
	return tempID
}

// ResolveOptimistic replaces a pending entry with the server's block,
// keeping its slot in render order.
func (s *Store) ResolveOptimistic(tempID string, server domain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.tempID == tempID {
			s.entries[i] = entry{block: server}
			return nil
		}
	}
	return fmt.Errorf("resolve optimistic: no pending block %s", tempID)
}

// DiscardOptimistic drops a pending entry entirely, for when the create
// call failed and no retry is wanted.
func (s *Store) DiscardOptimistic(tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.tempID == tempID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// ApplyPatchSet applies a placement resolver result to local state,
// before any network round trip.
func (s *Store) ApplyPatchSet(patches layout.PatchSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		p, ok := patches[s.entries[i].block.ID]
		if !ok {
			continue
		}
		if p.Position != nil {
			s.entries[i].block.Position = *p.Position
		}
		if p.Column != nil {
			s.entries[i].block.Column = *p.Column
		}
	}
}

// Snapshot captures the store's current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]entry, len(s.entries))
	copy(entries, s.entries)
	return Snapshot{entries: entries}
}

// Rollback restores a previously captured snapshot.
func (s *Store) Rollback(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]entry, len(snap.entries))
	copy(s.entries, snap.entries)
}

// Refresh replaces local state with the server's list wholesale. Callers
// route this through the SyncCoordinator so an in-flight optimistic patch
// is not visibly reverted by stale data.
func (s *Store) Refresh(serverBlocks []domain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]entry, len(serverBlocks))
	for i, b := range serverBlocks {
		s.entries[i] = entry{block: b}
	}
}
