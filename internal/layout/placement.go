package layout

import (
	"dash/internal/domain"
)

// PatchSet maps block IDs to the placement changes a drop requires: the
// dragged block plus at most one displaced sibling. Empty means no-op.
type PatchSet map[string]domain.PositionPatch

// Resolve decides where dragged lands when dropped over another block, and
// which sibling (if any) has to give up its column.
//
// The collision rule is deliberately single-level: one sibling is displaced,
// never a cascading chain. A full constraint solver over the three columns
// would handle pathological inputs better, but the heuristic matches the
// observed drag behavior and keeps drops predictable.
func Resolve(dragged, over domain.Block, rows []Row) PatchSet {
	if dragged.ID == over.ID {
		return nil
	}

	targetIndex := over.Row()
	var target *Row
	for i := range rows {
		if rows[i].Index == targetIndex {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	used := make(map[int]domain.Block)
	for _, b := range target.Blocks {
		if b.ID == dragged.ID {
			continue
		}
		if _, taken := used[b.EffectiveColumn()]; !taken {
			used[b.EffectiveColumn()] = b
		}
	}

	col := placeColumn(used, over.EffectiveColumn())

	patches := PatchSet{}
	pos := float64(targetIndex)
	colCopy := col
	patches[dragged.ID] = domain.PositionPatch{Position: &pos, Column: &colCopy}

	if occupant, collided := used[col]; collided {
		moved := displaceColumn(occupant.EffectiveColumn(), col, used)
		patches[occupant.ID] = domain.PositionPatch{Column: &moved}
	}
	return patches
}

// placeColumn picks the dragged block's column given the set of occupied
// columns in the target row and the column under the pointer.
func placeColumn(used map[int]domain.Block, overCol int) int {
	_, has0 := used[0]
	_, has1 := used[1]
	_, has2 := used[2]

	switch {
	case len(used) == 0:
		return 0
	case has0 && !has1 && !has2:
		return 1
	case has0 && has1 && !has2:
		return 2
	}

	// Full or non-contiguous row: try the slot adjacent to the pointer
	// first, then any free slot, then force a displacement in place.
	if c := overCol + 1; c < domain.MaxColumns && !occupied(used, c) {
		return c
	}
	if c := overCol - 1; c >= 0 && !occupied(used, c) {
		return c
	}
	for c := 0; c < domain.MaxColumns; c++ {
		if !occupied(used, c) {
			return c
		}
	}
	return overCol
}

// displaceColumn finds a new column for the sibling the dragged block just
// evicted: the first column that is neither its own, nor the dragged
// block's, nor held by a third block. When the row leaves no choice the
// sibling slides one slot right, capped at the last column.
func displaceColumn(original, draggedCol int, used map[int]domain.Block) int {
	for c := 0; c < domain.MaxColumns; c++ {
		if c == original || c == draggedCol {
			continue
		}
		if occupied(used, c) {
			continue
		}
		return c
	}
	c := original + 1
	if c > domain.MaxColumns-1 {
		c = domain.MaxColumns - 1
	}
	return c
}

func occupied(used map[int]domain.Block, col int) bool {
	_, ok := used[col]
	return ok
}
