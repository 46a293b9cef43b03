package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dash/internal/domain"
)

// TabService manages the tab tree of a project. Tabs nest via ParentTabID;
// deleting a tab cascades to its children and all their blocks, then
// renumbers the surviving siblings densely.
type TabService struct {
	store   domain.TabStore
	blocks  *BlockService
	emitter EventEmitter
}

func NewTabService(store domain.TabStore, blocks *BlockService, emitter EventEmitter) *TabService {
	return &TabService{store: store, blocks: blocks, emitter: emitter}
}

// CreateTab appends a tab at the end of its sibling list.
func (s *TabService) CreateTab(ctx context.Context, projectID, parentTabID, name string) (*domain.Tab, error) {
	siblings, err := s.siblings(projectID, parentTabID)
	if err != nil {
		return nil, err
	}
	t := &domain.Tab{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		ParentTabID: parentTabID,
		Name:        name,
		Order:       len(siblings),
	}
	if err := s.store.CreateTab(t); err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	s.emitter.Emit(ctx, "tab:created", t)
	return t, nil
}

func (s *TabService) GetTab(id string) (*domain.Tab, error) {
	return s.store.GetTab(id)
}

func (s *TabService) ListTabs(projectID string) ([]domain.Tab, error) {
	return s.store.ListTabs(projectID)
}

// State bundles a tab with its top-level canvas blocks, the unit the
// frontend needs to render a tab it just navigated to.
func (s *TabService) State(id string) (*domain.TabState, error) {
	t, err := s.store.GetTab(id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListBlocks(t.ID, "")
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return &domain.TabState{Tab: *t, Blocks: blocks}, nil
}

func (s *TabService) RenameTab(ctx context.Context, id, name string) error {
	t, err := s.store.GetTab(id)
	if err != nil {
		return err
	}
	t.Name = name
	return s.store.UpdateTab(t)
}

// DeleteTab removes a tab, its descendant tabs, and every block they hold,
// then closes the ordering gap among the remaining siblings.
func (s *TabService) DeleteTab(ctx context.Context, id string) error {
	t, err := s.store.GetTab(id)
	if err != nil {
		return err
	}
	if err := s.deleteSubtree(ctx, t); err != nil {
		return err
	}
	if err := s.renumberSiblings(t.ProjectID, t.ParentTabID); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "tab:deleted", map[string]string{"tabId": id})
	return nil
}

func (s *TabService) deleteSubtree(ctx context.Context, t *domain.Tab) error {
	children, err := s.store.ListChildTabs(t.ID)
	if err != nil {
		return fmt.Errorf("list child tabs: %w", err)
	}
	for i := range children {
		if err := s.deleteSubtree(ctx, &children[i]); err != nil {
			return err
		}
	}
	if err := s.blocks.DeleteBlocksByTab(t.ID); err != nil {
		return fmt.Errorf("delete blocks of tab %s: %w", t.ID, err)
	}
	if err := s.store.DeleteTab(t.ID); err != nil {
		return fmt.Errorf("delete tab %s: %w", t.ID, err)
	}
	return nil
}

// renumberSiblings reassigns dense sort orders after a removal.
func (s *TabService) renumberSiblings(projectID, parentTabID string) error {
	siblings, err := s.siblings(projectID, parentTabID)
	if err != nil {
		return err
	}
	for i := range siblings {
		if siblings[i].Order == i {
			continue
		}
		siblings[i].Order = i
		if err := s.store.UpdateTab(&siblings[i]); err != nil {
			return fmt.Errorf("renumber tab %s: %w", siblings[i].ID, err)
		}
	}
	return nil
}

func (s *TabService) siblings(projectID, parentTabID string) ([]domain.Tab, error) {
	all, err := s.store.ListTabs(projectID)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	var siblings []domain.Tab
	for _, t := range all {
		if t.ParentTabID == parentTabID {
			siblings = append(siblings, t)
		}
	}
	return siblings, nil
}
