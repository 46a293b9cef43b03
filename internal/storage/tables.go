package storage

import (
	"fmt"
	"time"
)

// DBConnection is a saved external database connection that table blocks
// query through a dbclient connector.
type DBConnection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Driver    string    `json:"driver"` // postgres | mysql | sqlite | mongodb
	DSN       string    `json:"dsn"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableResult is the cached output of a table block's query.
type TableResult struct {
	BlockID     string    `json:"blockId"`
	ColumnsJSON string    `json:"columnsJson"`
	RowsJSON    string    `json:"rowsJson"`
	RowCount    int       `json:"rowCount"`
	Error       string    `json:"error"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// TableStore persists database connections and cached table-block results.
type TableStore struct {
	db *DB
}

func NewTableStore(db *DB) *TableStore {
	return &TableStore{db: db}
}

func (s *TableStore) CreateConnection(c *DBConnection) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO db_connections (id, name, driver, dsn, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Driver, c.DSN, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *TableStore) GetConnection(id string) (*DBConnection, error) {
	c := &DBConnection{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, driver, dsn, created_at, updated_at FROM db_connections WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Driver, &c.DSN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return c, nil
}

func (s *TableStore) ListConnections() ([]DBConnection, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, driver, dsn, created_at, updated_at FROM db_connections ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []DBConnection
	for rows.Next() {
		var c DBConnection
		if err := rows.Scan(&c.ID, &c.Name, &c.Driver, &c.DSN, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (s *TableStore) DeleteConnection(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM db_connections WHERE id = ?`, id)
	return err
}

// SaveResult upserts the cached result for a table block.
func (s *TableStore) SaveResult(r *TableResult) error {
	r.RefreshedAt = time.Now()
	_, err := s.db.conn.Exec(
		`INSERT INTO table_results (block_id, columns_json, rows_json, row_count, error, refreshed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(block_id) DO UPDATE SET
			columns_json = excluded.columns_json,
			rows_json = excluded.rows_json,
			row_count = excluded.row_count,
			error = excluded.error,
			refreshed_at = excluded.refreshed_at`,
		r.BlockID, r.ColumnsJSON, r.RowsJSON, r.RowCount, r.Error, r.RefreshedAt,
	)
	return err
}

func (s *TableStore) GetResult(blockID string) (*TableResult, error) {
	r := &TableResult{}
	err := s.db.conn.QueryRow(
		`SELECT block_id, columns_json, rows_json, row_count, error, refreshed_at
		 FROM table_results WHERE block_id = ?`, blockID,
	).Scan(&r.BlockID, &r.ColumnsJSON, &r.RowsJSON, &r.RowCount, &r.Error, &r.RefreshedAt)
	if err != nil {
		return nil, fmt.Errorf("get table result: %w", err)
	}
	return r, nil
}

func (s *TableStore) DeleteResult(blockID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM table_results WHERE block_id = ?`, blockID)
	return err
}
