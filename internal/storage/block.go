package storage

import (
	"fmt"
	"time"

	"dash/internal/domain"
)

// BlockStore implements domain.BlockStore using SQLite.
type BlockStore struct {
	db *DB
}

func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = `id, tab_id, parent_block_id, type, content, position, col, file_path, created_at, updated_at`

func (s *BlockStore) CreateBlock(b *domain.Block) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO blocks (`+blockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TabID, b.ParentBlockID, b.Type, b.Content, b.Position, b.Column, b.FilePath, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BlockStore) GetBlock(id string) (*domain.Block, error) {
	b := &domain.Block{}
	err := s.db.conn.QueryRow(
		`SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id,
	).Scan(&b.ID, &b.TabID, &b.ParentBlockID, &b.Type, &b.Content, &b.Position, &b.Column, &b.FilePath, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

func (s *BlockStore) ListBlocks(tabID, parentBlockID string) ([]domain.Block, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+blockColumns+` FROM blocks
		 WHERE tab_id = ? AND parent_block_id = ?
		 ORDER BY position ASC, col ASC, created_at ASC`,
		tabID, parentBlockID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.ID, &b.TabID, &b.ParentBlockID, &b.Type, &b.Content, &b.Position, &b.Column, &b.FilePath, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// ListBlocksByType returns every block of the given type across all tabs.
// Used by the table service to schedule refreshes at startup.
func (s *BlockStore) ListBlocksByType(t domain.BlockType) ([]domain.Block, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+blockColumns+` FROM blocks WHERE type = ? ORDER BY created_at ASC`, t,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.ID, &b.TabID, &b.ParentBlockID, &b.Type, &b.Content, &b.Position, &b.Column, &b.FilePath, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *BlockStore) UpdateBlock(b *domain.Block) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE blocks SET type = ?, content = ?, position = ?, col = ?, file_path = ?, updated_at = ? WHERE id = ?`,
		b.Type, b.Content, b.Position, b.Column, b.FilePath, b.UpdatedAt, b.ID,
	)
	return err
}

// UpdateBlockPosition applies a partial placement patch and returns the
// stored block. Re-issuing the same patch leaves the row unchanged apart
// from updated_at.
func (s *BlockStore) UpdateBlockPosition(id string, patch domain.PositionPatch) (*domain.Block, error) {
	b, err := s.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if patch.Position != nil {
		b.Position = *patch.Position
	}
	if patch.Column != nil {
		b.Column = *patch.Column
	}
	b.UpdatedAt = time.Now()
	_, err = s.db.conn.Exec(
		`UPDATE blocks SET position = ?, col = ?, updated_at = ? WHERE id = ?`,
		b.Position, b.Column, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update block position: %w", err)
	}
	return b, nil
}

func (s *BlockStore) DeleteBlock(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM blocks WHERE id = ?`, id)
	return err
}

func (s *BlockStore) DeleteBlocksByTab(tabID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM blocks WHERE tab_id = ?`, tabID)
	return err
}

// TabFingerprint summarizes a tab's block set (count + newest update) so
// the watcher can cheaply detect external modifications.
func (s *BlockStore) TabFingerprint(tabID string) (string, error) {
	var count int
	var latest string
	err := s.db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM blocks WHERE tab_id = ?`, tabID,
	).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("fingerprint tab: %w", err)
	}
	return fmt.Sprintf("%d:%s", count, latest), nil
}
