package layout

import (
	"testing"

	"dash/internal/domain"
)

func resolve(t *testing.T, dragged, over domain.Block, blocks []domain.Block) PatchSet {
	t.Helper()
	return Resolve(dragged, over, Rows(blocks))
}

func wantColumn(t *testing.T, patches PatchSet, id string, col int) {
	t.Helper()
	p, ok := patches[id]
	if !ok {
		t.Fatalf("no patch for %s", id)
	}
	if p.Column == nil {
		t.Fatalf("patch for %s has no column", id)
	}
	if *p.Column != col {
		t.Errorf("%s column = %d, want %d", id, *p.Column, col)
	}
}

func TestResolve_DropOnSelfIsNoop(t *testing.T) {
	a := block("a", 0, 0)
	if patches := resolve(t, a, a, []domain.Block{a}); len(patches) != 0 {
		t.Errorf("expected empty patch set, got %v", patches)
	}
}

func TestResolve_NonexistentRowIsNoop(t *testing.T) {
	dragged := block("d", 0, 0)
	over := block("ghost", 5, 0)
	if patches := resolve(t, dragged, over, []domain.Block{dragged}); len(patches) != 0 {
		t.Errorf("expected empty patch set, got %v", patches)
	}
}

func TestResolve_EmptyRowTakesColumnZero(t *testing.T) {
	// The dragged block is excluded from the occupancy set, so a row it
	// occupies alone counts as empty: it collapses back to column 0.
	dragged := block("d", 3, 2)
	over := block("slot", 3.4, 1) // synthetic drop target in the same row
	patches := resolve(t, dragged, over, []domain.Block{dragged})
	wantColumn(t, patches, "d", 0)
	if p := patches["d"]; p.Position == nil || *p.Position != 3 {
		t.Errorf("position patch = %v, want 3", p.Position)
	}
}

func TestResolve_SingleOccupantYieldsColumnOne(t *testing.T) {
	a := block("a", 0, 0)
	dragged := block("d", 4, 0)
	patches := resolve(t, dragged, a, []domain.Block{a, dragged})
	wantColumn(t, patches, "d", 1)
	if p := patches["d"]; p.Position == nil || *p.Position != 0 {
		t.Errorf("dragged position patch = %v, want 0", p.Position)
	}
	if _, moved := patches["a"]; moved {
		t.Error("a should not be displaced")
	}
}

func TestResolve_TwoOccupantsYieldColumnTwo(t *testing.T) {
	// Row has A(col0), B(col1); dropping C onto B lands C in column 2
	// and leaves A and B untouched.
	a := block("a", 0, 0)
	b := block("b", 0, 1)
	c := block("c", 2, 0)
	patches := resolve(t, c, b, []domain.Block{a, b, c})
	if len(patches) != 1 {
		t.Fatalf("patch set = %v, want only c", patches)
	}
	wantColumn(t, patches, "c", 2)
	if p := patches["c"]; p.Position == nil || *p.Position != 0 {
		t.Errorf("c position = %v, want 0", p.Position)
	}
}

func TestResolve_IntoOwnRowRepositions(t *testing.T) {
	// Dragged already lives in the target row; it is excluded from the
	// occupancy set so it can move between columns of its own row.
	a := block("a", 0, 0)
	d := block("d", 0, 1)
	patches := resolve(t, d, a, []domain.Block{a, d})
	wantColumn(t, patches, "d", 1)
}

func TestResolve_FullRowDisplacesTargetColumn(t *testing.T) {
	// Cols 0,1,2 all occupied; drop D onto B at col 1. No free columns, so
	// D forces its way into col 1 and B slides by the displacement rule.
	a := block("a", 0, 0)
	b := block("b", 0, 1)
	c := block("c", 0, 2)
	d := block("d", 3, 0)
	patches := resolve(t, d, b, []domain.Block{a, b, c, d})
	wantColumn(t, patches, "d", 1)
	wantColumn(t, patches, "b", 2)
	if _, moved := patches["a"]; moved {
		t.Error("a should not move")
	}
	if _, moved := patches["c"]; moved {
		t.Error("c should not move: displacement is single-level")
	}
}

func TestResolve_FullRowDropOnEdge(t *testing.T) {
	a := block("a", 0, 0)
	b := block("b", 0, 1)
	c := block("c", 0, 2)
	d := block("d", 3, 0)
	patches := resolve(t, d, a, []domain.Block{a, b, c, d})
	// overColumn 0: col 1 taken, col -1 invalid, no free column → force col 0.
	wantColumn(t, patches, "d", 0)
	wantColumn(t, patches, "a", 1)
}

func TestResolve_NonContiguousRowPrefersAdjacent(t *testing.T) {
	b := block("b", 0, 1)
	d := block("d", 2, 0)
	patches := resolve(t, d, b, []domain.Block{b, d})
	// used = {1}: adjacent to pointer, col 2 is free.
	wantColumn(t, patches, "d", 2)
	if _, moved := patches["b"]; moved {
		t.Error("b should not move")
	}
}

func TestResolve_NonContiguousRowFallsBackLeft(t *testing.T) {
	b := block("b", 0, 2)
	d := block("d", 1, 0)
	patches := resolve(t, d, b, []domain.Block{b, d})
	// used = {2}: col 3 is out of range, col 1 is free.
	wantColumn(t, patches, "d", 1)
}

func TestResolve_DisplacedSiblingKeepsRow(t *testing.T) {
	a := block("a", 2, 0)
	b := block("b", 2, 1)
	c := block("c", 2, 2)
	d := block("d", 0, 0)
	patches := resolve(t, d, a, []domain.Block{a, b, c, d})
	p, ok := patches["a"]
	if !ok {
		t.Fatal("a should be displaced")
	}
	if p.Position != nil {
		t.Errorf("displaced sibling must keep its position, got patch %v", *p.Position)
	}
}

// The resolver must never assign two blocks of a row to the same column
// unless the row was already full and the collision was explicitly forced.
func TestResolve_NoUnrequestedCollisions(t *testing.T) {
	layouts := [][]domain.Block{
		{block("a", 0, 0)},
		{block("a", 0, 0), block("b", 0, 1)},
		{block("a", 0, 1)},
		{block("a", 0, 0), block("b", 0, 2)},
		{block("a", 0, 1), block("b", 0, 2)},
	}
	for _, row := range layouts {
		for _, over := range row {
			dragged := block("dragged", 9, 0)
			all := append(append([]domain.Block{}, row...), dragged)
			patches := Resolve(dragged, over, Rows(all))

			final := map[string]int{}
			for _, b := range row {
				final[b.ID] = b.EffectiveColumn()
			}
			final["dragged"] = dragged.EffectiveColumn()
			for id, p := range patches {
				if p.Column == nil {
					continue
				}
				if *p.Column < 0 || *p.Column >= domain.MaxColumns {
					t.Fatalf("column %d out of range for %s", *p.Column, id)
				}
				final[id] = *p.Column
			}
			seen := map[int]string{}
			for id, col := range final {
				if other, dup := seen[col]; dup {
					t.Errorf("layout %v over %s: %s and %s share column %d",
						row, over.ID, other, id, col)
				}
				seen[col] = id
			}
		}
	}
}

func TestResolve_ColumnsAlwaysInRange(t *testing.T) {
	a := block("a", 0, 0)
	b := block("b", 0, 1)
	c := block("c", 0, 2)
	d := block("d", 1, 0)
	for _, over := range []domain.Block{a, b, c} {
		patches := resolve(t, d, over, []domain.Block{a, b, c, d})
		for id, p := range patches {
			if p.Column != nil && (*p.Column < 0 || *p.Column >= domain.MaxColumns) {
				t.Errorf("over %s: %s column %d out of range", over.ID, id, *p.Column)
			}
		}
	}
}
