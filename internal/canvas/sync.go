package canvas

import (
	"sync"

	"dash/internal/domain"
)

// SyncCoordinator decides whether an incoming server snapshot may replace
// the optimistic store. Each locally applied mutation takes a sequence
// stamp; persistence success acknowledges it. A refresh that arrives while
// a stamp is still unacknowledged is known to predate the local change and
// is dropped. This replaces the classic one-shot "just dragged" flag, which
// could swallow unrelated refreshes.
type SyncCoordinator struct {
	mu       sync.Mutex
	store    *Store
	localSeq uint64
	ackedSeq uint64
	skipped  uint64
}

func NewSyncCoordinator(store *Store) *SyncCoordinator {
	return &SyncCoordinator{store: store}
}

// NoteLocalMutation records a locally applied mutation and returns its
// sequence stamp. Call right after the optimistic patch is applied.
func (sc *SyncCoordinator) NoteLocalMutation() uint64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.localSeq++
	return sc.localSeq
}

// Acknowledge marks the mutation with the given stamp as reflected by the
// server, re-enabling refreshes once nothing newer is outstanding.
func (sc *SyncCoordinator) Acknowledge(seq uint64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if seq > sc.ackedSeq {
		sc.ackedSeq = seq
	}
}

// Abandon releases a stamp whose mutation was rolled back; there is no
// local state left to protect from a refresh.
func (sc *SyncCoordinator) Abandon(seq uint64) {
	sc.Acknowledge(seq)
}

// Refresh replaces the store with the server's block list unless an
// unacknowledged local mutation exists. Reports whether the refresh was
// applied.
func (sc *SyncCoordinator) Refresh(serverBlocks []domain.Block) bool {
	sc.mu.Lock()
	if sc.localSeq > sc.ackedSeq {
		sc.skipped++
		sc.mu.Unlock()
		return false
	}
	sc.mu.Unlock()

	sc.store.Refresh(serverBlocks)
	return true
}

// SkippedRefreshes returns how many refreshes were suppressed. Used by
// tests and the debug surface.
func (sc *SyncCoordinator) SkippedRefreshes() uint64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.skipped
}
