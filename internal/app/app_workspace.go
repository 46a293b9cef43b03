package app

import (
	"dash/internal/domain"
)

// ============================================================
// Workspaces
// ============================================================

func (a *App) ListWorkspaces() ([]domain.Workspace, error) {
	return a.workspaces.ListWorkspaces()
}

func (a *App) CreateWorkspace(name string) (*domain.Workspace, error) {
	return a.workspaces.CreateWorkspace(a.ctx, name)
}

func (a *App) RenameWorkspace(id, name string) error {
	return a.workspaces.RenameWorkspace(a.ctx, id, name)
}

func (a *App) DeleteWorkspace(id string) error {
	return a.workspaces.DeleteWorkspace(a.ctx, id)
}

// ============================================================
// Projects
// ============================================================

func (a *App) ListProjects(workspaceID string) ([]domain.Project, error) {
	return a.workspaces.ListProjects(workspaceID)
}

func (a *App) CreateProject(workspaceID, name string) (*domain.Project, error) {
	return a.workspaces.CreateProject(a.ctx, workspaceID, name)
}

func (a *App) DeleteProject(id string) error {
	return a.workspaces.DeleteProject(a.ctx, id)
}

// ============================================================
// Tabs
// ============================================================

func (a *App) ListTabs(projectID string) ([]domain.Tab, error) {
	return a.tabs.ListTabs(projectID)
}

func (a *App) CreateTab(projectID, parentTabID, name string) (*domain.Tab, error) {
	return a.tabs.CreateTab(a.ctx, projectID, parentTabID, name)
}

// GetTabState returns a tab together with its top-level blocks in one
// round trip.
func (a *App) GetTabState(id string) (*domain.TabState, error) {
	return a.tabs.State(id)
}

func (a *App) RenameTab(id, name string) error {
	return a.tabs.RenameTab(a.ctx, id, name)
}

func (a *App) DeleteTab(id string) error {
	return a.tabs.DeleteTab(a.ctx, id)
}
