package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dash/internal/domain"
)

// WorkspaceService manages workspaces and their projects. Deletes cascade
// through the tab service so no project leaves orphaned tabs, blocks, or
// backing files behind.
type WorkspaceService struct {
	store   domain.WorkspaceStore
	tabs    *TabService
	emitter EventEmitter
}

func NewWorkspaceService(store domain.WorkspaceStore, tabs *TabService, emitter EventEmitter) *WorkspaceService {
	return &WorkspaceService{store: store, tabs: tabs, emitter: emitter}
}

func (s *WorkspaceService) CreateWorkspace(ctx context.Context, name string) (*domain.Workspace, error) {
	w := &domain.Workspace{ID: uuid.New().String(), Name: name, Icon: "🗂️"}
	if err := s.store.CreateWorkspace(w); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return w, nil
}

func (s *WorkspaceService) ListWorkspaces() ([]domain.Workspace, error) {
	return s.store.ListWorkspaces()
}

func (s *WorkspaceService) RenameWorkspace(ctx context.Context, id, name string) error {
	w, err := s.store.GetWorkspace(id)
	if err != nil {
		return err
	}
	w.Name = name
	return s.store.UpdateWorkspace(w)
}

func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, id string) error {
	projects, err := s.store.ListProjects(id)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if err := s.DeleteProject(ctx, p.ID); err != nil {
			return fmt.Errorf("delete project %s: %w", p.ID, err)
		}
	}
	return s.store.DeleteWorkspace(id)
}

func (s *WorkspaceService) CreateProject(ctx context.Context, workspaceID, name string) (*domain.Project, error) {
	existing, err := s.store.ListProjects(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	p := &domain.Project{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		Name:        name,
		Order:       len(existing),
	}
	if err := s.store.CreateProject(p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *WorkspaceService) ListProjects(workspaceID string) ([]domain.Project, error) {
	return s.store.ListProjects(workspaceID)
}

// DeleteProject removes a project and everything under it: each root tab
// is deleted through the tab service, which cascades to child tabs, their
// blocks, and the blocks' backing files.
func (s *WorkspaceService) DeleteProject(ctx context.Context, id string) error {
	tabs, err := s.tabs.ListTabs(id)
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	for _, t := range tabs {
		if t.ParentTabID != "" {
			continue // deleted with its root ancestor
		}
		if err := s.tabs.DeleteTab(ctx, t.ID); err != nil {
			return fmt.Errorf("delete tab %s: %w", t.ID, err)
		}
	}
	return s.store.DeleteProject(id)
}
