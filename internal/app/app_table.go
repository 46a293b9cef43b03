package app

import (
	"dash/internal/storage"
)

// ============================================================
// Table blocks / database connections
// ============================================================

func (a *App) CreateDBConnection(name, driver, dsn string) (*storage.DBConnection, error) {
	return a.tables.CreateConnection(a.ctx, name, driver, dsn)
}

func (a *App) ListDBConnections() ([]storage.DBConnection, error) {
	return a.tables.ListConnections()
}

func (a *App) DeleteDBConnection(id string) error {
	return a.tables.DeleteConnection(id)
}

// RefreshTableBlock re-runs a table block's query and returns the
// cached result.
func (a *App) RefreshTableBlock(blockID string) (*storage.TableResult, error) {
	return a.tables.RefreshBlock(a.ctx, blockID)
}

// GetTableResult returns the last cached result for a table block.
func (a *App) GetTableResult(blockID string) (*storage.TableResult, error) {
	return a.tables.GetResult(blockID)
}

// ReloadTableSchedule re-reads a table block's cron expression and
// reschedules its refresh job.
func (a *App) ReloadTableSchedule(blockID string) error {
	return a.tables.ReloadSchedule(a.ctx, blockID)
}
