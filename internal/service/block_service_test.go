package service

import (
	"context"
	"os"
	"testing"

	"dash/internal/domain"
	"dash/internal/storage"
)

func testStores(t *testing.T) (*storage.DB, *storage.BlockStore, string) {
	t.Helper()
	dataDir := t.TempDir()
	db, err := storage.New(":memory:", dataDir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ws := storage.NewWorkspaceStore(db)
	if err := ws.CreateWorkspace(&domain.Workspace{ID: "ws-1", Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.CreateProject(&domain.Project{ID: "proj-1", WorkspaceID: "ws-1", Name: "Site"}); err != nil {
		t.Fatal(err)
	}
	tabs := storage.NewTabStore(db)
	if err := tabs.CreateTab(&domain.Tab{ID: "tab-1", ProjectID: "proj-1", Name: "Overview"}); err != nil {
		t.Fatal(err)
	}
	return db, storage.NewBlockStore(db), dataDir
}

func TestBlockService_CreateDefaultsToEndOfCanvas(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	svc := NewBlockService(blocks, dataDir, &MockEmitter{})
	ctx := context.Background()

	first, err := svc.CreateBlock(ctx, "tab-1", "", domain.BlockTypeTask, -1)
	if err != nil {
		t.Fatal(err)
	}
	if first.Position != 0 || first.Column != 0 {
		t.Errorf("first block = (%v, %d), want (0, 0)", first.Position, first.Column)
	}

	second, err := svc.CreateBlock(ctx, "tab-1", "", domain.BlockTypeTask, -1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Position != 1 {
		t.Errorf("second block position = %v, want 1 (row below)", second.Position)
	}
}

func TestBlockService_CreateRejectsUnknownType(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	svc := NewBlockService(blocks, dataDir, &MockEmitter{})

	for _, bad := range []domain.BlockType{"chart", "embed", ""} {
		if _, err := svc.CreateBlock(context.Background(), "tab-1", "", bad, -1); err == nil {
			t.Errorf("CreateBlock(%q) succeeded, want error", bad)
		}
	}
}

func TestBlockService_CreateTextBlockWritesBackingFile(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	emitter := &MockEmitter{}
	svc := NewBlockService(blocks, dataDir, emitter)

	b, err := svc.CreateBlock(context.Background(), "tab-1", "", domain.BlockTypeText, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.FilePath == "" {
		t.Fatal("text block should have a backing file")
	}
	if _, err := os.Stat(b.FilePath); err != nil {
		t.Errorf("backing file missing: %v", err)
	}
	if len(emitter.Events) != 1 || emitter.Events[0].Event != "block:created" {
		t.Errorf("events = %v, want one block:created", emitter.Events)
	}
}

func TestBlockService_UpdateContentSyncsBackingFile(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	svc := NewBlockService(blocks, dataDir, &MockEmitter{})
	ctx := context.Background()

	b, err := svc.CreateBlock(ctx, "tab-1", "", domain.BlockTypeText, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateBlockContent(ctx, b.ID, "# Weekly notes"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(b.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Weekly notes" {
		t.Errorf("backing file = %q", data)
	}
}

func TestBlockService_UpdatePositionRejectsOutOfRange(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	svc := NewBlockService(blocks, dataDir, &MockEmitter{})
	ctx := context.Background()

	b, err := svc.CreateBlock(ctx, "tab-1", "", domain.BlockTypeTask, 0)
	if err != nil {
		t.Fatal(err)
	}

	badCol := 3
	if _, err := svc.UpdateBlockPosition(ctx, b.ID, domain.PositionPatch{Column: &badCol}); err == nil {
		t.Error("column 3 should be rejected")
	}
	badPos := -2.0
	if _, err := svc.UpdateBlockPosition(ctx, b.ID, domain.PositionPatch{Position: &badPos}); err == nil {
		t.Error("negative position should be rejected")
	}
}

func TestBlockService_DeleteSectionCascades(t *testing.T) {
	_, blocks, dataDir := testStores(t)
	svc := NewBlockService(blocks, dataDir, &MockEmitter{})
	ctx := context.Background()

	section, err := svc.CreateBlock(ctx, "tab-1", "", domain.BlockTypeSection, 0)
	if err != nil {
		t.Fatal(err)
	}
	nested, err := svc.CreateBlock(ctx, "tab-1", section.ID, domain.BlockTypeTask, -1)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteBlock(ctx, section.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetBlock(nested.ID); err == nil {
		t.Error("nested block should be deleted with its section")
	}
}
