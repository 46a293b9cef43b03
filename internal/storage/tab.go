package storage

import (
	"fmt"
	"time"

	"dash/internal/domain"
)

// TabStore implements domain.TabStore using SQLite.
type TabStore struct {
	db *DB
}

func NewTabStore(db *DB) *TabStore {
	return &TabStore{db: db}
}

func (s *TabStore) CreateTab(t *domain.Tab) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO tabs (id, project_id, parent_tab_id, name, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.ParentTabID, t.Name, t.Order, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *TabStore) GetTab(id string) (*domain.Tab, error) {
	t := &domain.Tab{}
	err := s.db.conn.QueryRow(
		`SELECT id, project_id, parent_tab_id, name, sort_order, created_at, updated_at
		 FROM tabs WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &t.ParentTabID, &t.Name, &t.Order, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tab: %w", err)
	}
	return t, nil
}

func (s *TabStore) ListTabs(projectID string) ([]domain.Tab, error) {
	return s.scanTabs(
		`SELECT id, project_id, parent_tab_id, name, sort_order, created_at, updated_at
		 FROM tabs WHERE project_id = ? ORDER BY sort_order ASC, created_at ASC`, projectID,
	)
}

func (s *TabStore) ListChildTabs(parentTabID string) ([]domain.Tab, error) {
	return s.scanTabs(
		`SELECT id, project_id, parent_tab_id, name, sort_order, created_at, updated_at
		 FROM tabs WHERE parent_tab_id = ? ORDER BY sort_order ASC, created_at ASC`, parentTabID,
	)
}

func (s *TabStore) scanTabs(query, arg string) ([]domain.Tab, error) {
	rows, err := s.db.conn.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []domain.Tab
	for rows.Next() {
		var t domain.Tab
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.ParentTabID, &t.Name, &t.Order, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tabs = append(tabs, t)
	}
	return tabs, rows.Err()
}

func (s *TabStore) UpdateTab(t *domain.Tab) error {
	t.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE tabs SET name = ?, parent_tab_id = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.ParentTabID, t.Order, t.UpdatedAt, t.ID,
	)
	return err
}

func (s *TabStore) DeleteTab(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM tabs WHERE id = ?`, id)
	return err
}
