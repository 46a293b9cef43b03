package service

import (
	"context"
	"os"
	"testing"

	"dash/internal/domain"
	"dash/internal/storage"
)

func newWorkspaceService(t *testing.T) (*WorkspaceService, *TabService, *BlockService) {
	t.Helper()
	tabs, blocks, db := newTabService(t)
	ws := NewWorkspaceService(storage.NewWorkspaceStore(db), tabs, &MockEmitter{})
	return ws, tabs, blocks
}

func TestWorkspaceService_DeleteProjectCascadesTabsAndBlocks(t *testing.T) {
	ws, tabs, blocks := newWorkspaceService(t)
	ctx := context.Background()

	child, err := tabs.CreateTab(ctx, "proj-1", "tab-1", "Nested")
	if err != nil {
		t.Fatal(err)
	}
	text, err := blocks.CreateBlock(ctx, child.ID, "", domain.BlockTypeText, -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := blocks.CreateBlock(ctx, "tab-1", "", domain.BlockTypeTask, -1); err != nil {
		t.Fatal(err)
	}

	if err := ws.DeleteProject(ctx, "proj-1"); err != nil {
		t.Fatal(err)
	}

	remaining, err := tabs.ListTabs("proj-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("tabs left after project delete = %d, want 0", len(remaining))
	}
	if got, _ := blocks.ListBlocks("tab-1", ""); len(got) != 0 {
		t.Errorf("blocks left on tab-1 = %d, want 0", len(got))
	}
	if got, _ := blocks.ListBlocks(child.ID, ""); len(got) != 0 {
		t.Errorf("blocks left on nested tab = %d, want 0", len(got))
	}
	if _, err := os.Stat(text.FilePath); !os.IsNotExist(err) {
		t.Errorf("backing file %s still on disk after project delete", text.FilePath)
	}
}

func TestWorkspaceService_DeleteWorkspaceCascadesProjects(t *testing.T) {
	ws, tabs, blocks := newWorkspaceService(t)
	ctx := context.Background()

	if _, err := blocks.CreateBlock(ctx, "tab-1", "", domain.BlockTypeTask, -1); err != nil {
		t.Fatal(err)
	}

	if err := ws.DeleteWorkspace(ctx, "ws-1"); err != nil {
		t.Fatal(err)
	}

	projects, err := ws.ListProjects("ws-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("projects left after workspace delete = %d, want 0", len(projects))
	}
	if remaining, _ := tabs.ListTabs("proj-1"); len(remaining) != 0 {
		t.Errorf("tabs left after workspace delete = %d, want 0", len(remaining))
	}
}
