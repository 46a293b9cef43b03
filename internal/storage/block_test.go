package storage

import (
	"testing"

	"dash/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTab(t *testing.T, db *DB) string {
	t.Helper()
	ws := NewWorkspaceStore(db)
	if err := ws.CreateWorkspace(&domain.Workspace{ID: "ws-1", Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.CreateProject(&domain.Project{ID: "proj-1", WorkspaceID: "ws-1", Name: "Site"}); err != nil {
		t.Fatal(err)
	}
	tabs := NewTabStore(db)
	if err := tabs.CreateTab(&domain.Tab{ID: "tab-1", ProjectID: "proj-1", Name: "Overview"}); err != nil {
		t.Fatal(err)
	}
	return "tab-1"
}

func TestBlockStore_CreateAndList(t *testing.T) {
	db := testDB(t)
	tabID := seedTab(t, db)
	store := NewBlockStore(db)

	for i, id := range []string{"b1", "b2", "b3"} {
		b := &domain.Block{
			ID: id, TabID: tabID, Type: domain.BlockTypeText,
			Content: "{}", Position: float64(i), Column: 0,
		}
		if err := store.CreateBlock(b); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	blocks, err := store.ListBlocks(tabID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	for i, want := range []string{"b1", "b2", "b3"} {
		if blocks[i].ID != want {
			t.Errorf("slot %d = %s, want %s", i, blocks[i].ID, want)
		}
	}
}

func TestBlockStore_ListScopesByParentBlock(t *testing.T) {
	db := testDB(t)
	tabID := seedTab(t, db)
	store := NewBlockStore(db)

	section := &domain.Block{ID: "section", TabID: tabID, Type: domain.BlockTypeSection, Content: "{}"}
	nested := &domain.Block{ID: "nested", TabID: tabID, ParentBlockID: "section", Type: domain.BlockTypeText, Content: "{}"}
	for _, b := range []*domain.Block{section, nested} {
		if err := store.CreateBlock(b); err != nil {
			t.Fatal(err)
		}
	}

	top, err := store.ListBlocks(tabID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ID != "section" {
		t.Errorf("top-level scope = %v, want only the section", top)
	}
	inner, err := store.ListBlocks(tabID, "section")
	if err != nil {
		t.Fatal(err)
	}
	if len(inner) != 1 || inner[0].ID != "nested" {
		t.Errorf("section scope = %v, want only the nested block", inner)
	}
}

func TestBlockStore_UpdateBlockPositionIdempotent(t *testing.T) {
	db := testDB(t)
	tabID := seedTab(t, db)
	store := NewBlockStore(db)

	b := &domain.Block{ID: "b1", TabID: tabID, Type: domain.BlockTypeText, Content: "{}"}
	if err := store.CreateBlock(b); err != nil {
		t.Fatal(err)
	}

	pos := 2.0
	col := 1
	patch := domain.PositionPatch{Position: &pos, Column: &col}

	first, err := store.UpdateBlockPosition("b1", patch)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.UpdateBlockPosition("b1", patch)
	if err != nil {
		t.Fatal(err)
	}
	if first.Position != second.Position || first.Column != second.Column {
		t.Errorf("patch not idempotent: (%v,%d) then (%v,%d)",
			first.Position, first.Column, second.Position, second.Column)
	}
	if second.Position != 2 || second.Column != 1 {
		t.Errorf("stored placement = (%v,%d), want (2,1)", second.Position, second.Column)
	}
}

func TestBlockStore_PartialPatchLeavesOtherField(t *testing.T) {
	db := testDB(t)
	tabID := seedTab(t, db)
	store := NewBlockStore(db)

	b := &domain.Block{ID: "b1", TabID: tabID, Type: domain.BlockTypeText, Content: "{}", Position: 4, Column: 2}
	if err := store.CreateBlock(b); err != nil {
		t.Fatal(err)
	}

	col := 0
	got, err := store.UpdateBlockPosition("b1", domain.PositionPatch{Column: &col})
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != 4 {
		t.Errorf("position = %v, want untouched 4", got.Position)
	}
	if got.Column != 0 {
		t.Errorf("column = %d, want 0", got.Column)
	}
}

func TestBlockStore_UpdatePositionMissingBlock(t *testing.T) {
	db := testDB(t)
	seedTab(t, db)
	store := NewBlockStore(db)
	if _, err := store.UpdateBlockPosition("nope", domain.PositionPatch{}); err == nil {
		t.Error("expected error for missing block")
	}
}

func TestBlockStore_TabFingerprintChangesOnWrite(t *testing.T) {
	db := testDB(t)
	tabID := seedTab(t, db)
	store := NewBlockStore(db)

	empty, err := store.TabFingerprint(tabID)
	if err != nil {
		t.Fatal(err)
	}

	b := &domain.Block{ID: "b1", TabID: tabID, Type: domain.BlockTypeText, Content: "{}"}
	if err := store.CreateBlock(b); err != nil {
		t.Fatal(err)
	}
	after, err := store.TabFingerprint(tabID)
	if err != nil {
		t.Fatal(err)
	}
	if empty == after {
		t.Errorf("fingerprint did not change after insert: %s", after)
	}
}

func TestTableStore_SaveResultUpserts(t *testing.T) {
	db := testDB(t)
	seedTab(t, db)
	store := NewTableStore(db)

	if err := store.SaveResult(&TableResult{BlockID: "b1", ColumnsJSON: `["id"]`, RowsJSON: `[[1]]`, RowCount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveResult(&TableResult{BlockID: "b1", ColumnsJSON: `["id"]`, RowsJSON: `[[1],[2]]`, RowCount: 2}); err != nil {
		t.Fatal(err)
	}

	r, err := store.GetResult("b1")
	if err != nil {
		t.Fatal(err)
	}
	if r.RowCount != 2 {
		t.Errorf("rowCount = %d, want 2 after upsert", r.RowCount)
	}
}
