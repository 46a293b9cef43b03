package storage

import (
	"fmt"
	"time"

	"dash/internal/domain"
)

// WorkspaceStore implements domain.WorkspaceStore using SQLite.
type WorkspaceStore struct {
	db *DB
}

func NewWorkspaceStore(db *DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

func (s *WorkspaceStore) CreateWorkspace(w *domain.Workspace) error {
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO workspaces (id, name, icon, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Icon, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (s *WorkspaceStore) GetWorkspace(id string) (*domain.Workspace, error) {
	w := &domain.Workspace{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, icon, created_at, updated_at FROM workspaces WHERE id = ?`, id,
	).Scan(&w.ID, &w.Name, &w.Icon, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return w, nil
}

func (s *WorkspaceStore) ListWorkspaces() ([]domain.Workspace, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, icon, created_at, updated_at FROM workspaces ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Icon, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

func (s *WorkspaceStore) UpdateWorkspace(w *domain.Workspace) error {
	w.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE workspaces SET name = ?, icon = ?, updated_at = ? WHERE id = ?`,
		w.Name, w.Icon, w.UpdatedAt, w.ID,
	)
	return err
}

func (s *WorkspaceStore) DeleteWorkspace(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	return err
}

func (s *WorkspaceStore) CreateProject(p *domain.Project) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO projects (id, workspace_id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.WorkspaceID, p.Name, p.Order, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *WorkspaceStore) GetProject(id string) (*domain.Project, error) {
	p := &domain.Project{}
	err := s.db.conn.QueryRow(
		`SELECT id, workspace_id, name, sort_order, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Order, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *WorkspaceStore) ListProjects(workspaceID string) ([]domain.Project, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, workspace_id, name, sort_order, created_at, updated_at
		 FROM projects WHERE workspace_id = ? ORDER BY sort_order ASC, created_at ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Order, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *WorkspaceStore) UpdateProject(p *domain.Project) error {
	p.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE projects SET name = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Order, p.UpdatedAt, p.ID,
	)
	return err
}

func (s *WorkspaceStore) DeleteProject(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}
