package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"dash/internal/dbclient"
	"dash/internal/domain"
	"dash/internal/storage"
)

const tableRowLimit = 200

// tableBlockSource is the slice of block persistence the table service needs.
type tableBlockSource interface {
	GetBlock(id string) (*domain.Block, error)
	ListBlocksByType(t domain.BlockType) ([]domain.Block, error)
}

// TableService feeds table blocks from external databases: it runs the
// block's saved query through a dbclient connector, caches the result, and
// re-runs it on the block's cron schedule.
type TableService struct {
	store   *storage.TableStore
	blocks  tableBlockSource
	emitter EventEmitter

	mu         sync.Mutex
	connectors map[string]dbclient.Connector // connection id → open connector
	cronSched  *cron.Cron
	cronIDs    map[string]cron.EntryID // block id → scheduled entry
}

func NewTableService(store *storage.TableStore, blocks tableBlockSource, emitter EventEmitter) *TableService {
	return &TableService{
		store:      store,
		blocks:     blocks,
		emitter:    emitter,
		connectors: make(map[string]dbclient.Connector),
		cronIDs:    make(map[string]cron.EntryID),
	}
}

// ── Connections ────────────────────────────────────────────

func (s *TableService) CreateConnection(ctx context.Context, name, driver, dsn string) (*storage.DBConnection, error) {
	c, err := dbclient.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	c.Close()

	conn := &storage.DBConnection{ID: newID(), Name: name, Driver: driver, DSN: dsn}
	if err := s.store.CreateConnection(conn); err != nil {
		return nil, fmt.Errorf("save connection: %w", err)
	}
	return conn, nil
}

func (s *TableService) ListConnections() ([]storage.DBConnection, error) {
	return s.store.ListConnections()
}

func (s *TableService) DeleteConnection(id string) error {
	s.mu.Lock()
	if c, ok := s.connectors[id]; ok {
		c.Close()
		delete(s.connectors, id)
	}
	s.mu.Unlock()
	return s.store.DeleteConnection(id)
}

// connector returns an open connector for the connection id, reusing a
// cached one when possible.
func (s *TableService) connector(ctx context.Context, connID string) (dbclient.Connector, error) {
	s.mu.Lock()
	if c, ok := s.connectors[connID]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	conn, err := s.store.GetConnection(connID)
	if err != nil {
		return nil, err
	}
	c, err := dbclient.Open(ctx, conn.Driver, conn.DSN)
	if err != nil {
		return nil, fmt.Errorf("open connection %s: %w", conn.Name, err)
	}

	s.mu.Lock()
	s.connectors[connID] = c
	s.mu.Unlock()
	return c, nil
}

// ── Refresh ────────────────────────────────────────────────

// RefreshBlock re-runs a table block's query and caches the outcome. Query
// failures are cached too, so the frontend can render the error in place.
func (s *TableService) RefreshBlock(ctx context.Context, blockID string) (*storage.TableResult, error) {
	b, err := s.blocks.GetBlock(blockID)
	if err != nil {
		return nil, err
	}
	if b.Type != domain.BlockTypeTable {
		return nil, fmt.Errorf("block %s is not a table block", blockID)
	}
	var content domain.TableContent
	if err := json.Unmarshal([]byte(b.Content), &content); err != nil {
		return nil, fmt.Errorf("parse table content: %w", err)
	}
	if content.ConnectionID == "" || content.Query == "" {
		return nil, fmt.Errorf("table block %s has no connection or query", blockID)
	}

	result := &storage.TableResult{BlockID: blockID}
	conn, err := s.connector(ctx, content.ConnectionID)
	if err != nil {
		result.Error = err.Error()
	} else if res, qerr := conn.Query(ctx, content.Query, tableRowLimit); qerr != nil {
		result.Error = qerr.Error()
	} else {
		cols, _ := json.Marshal(res.Columns)
		rows, _ := json.Marshal(res.Rows)
		result.ColumnsJSON = string(cols)
		result.RowsJSON = string(rows)
		result.RowCount = len(res.Rows)
	}

	if err := s.store.SaveResult(result); err != nil {
		return nil, fmt.Errorf("cache table result: %w", err)
	}
	s.emitter.Emit(ctx, "block:table-refreshed", map[string]string{"blockId": blockID})
	return result, nil
}

func (s *TableService) GetResult(blockID string) (*storage.TableResult, error) {
	return s.store.GetResult(blockID)
}

// ── Scheduling ─────────────────────────────────────────────

// StartSchedules begins cron-driven refreshes for every table block that
// declares a refreshCron. Call once at startup; ReloadSchedule keeps the
// entries current as blocks change.
func (s *TableService) StartSchedules(ctx context.Context) error {
	s.mu.Lock()
	if s.cronSched == nil {
		s.cronSched = cron.New()
		s.cronSched.Start()
	}
	s.mu.Unlock()

	blocks, err := s.blocks.ListBlocksByType(domain.BlockTypeTable)
	if err != nil {
		return fmt.Errorf("list table blocks: %w", err)
	}
	for _, b := range blocks {
		if err := s.ReloadSchedule(ctx, b.ID); err != nil {
			log.Printf("schedule table block %s: %v", b.ID, err)
		}
	}
	return nil
}

// ReloadSchedule re-reads one block's refreshCron and replaces its cron
// entry. An empty or invalid spec just unschedules the block.
func (s *TableService) ReloadSchedule(ctx context.Context, blockID string) error {
	s.mu.Lock()
	if id, ok := s.cronIDs[blockID]; ok {
		s.cronSched.Remove(id)
		delete(s.cronIDs, blockID)
	}
	sched := s.cronSched
	s.mu.Unlock()

	if sched == nil {
		return nil
	}

	b, err := s.blocks.GetBlock(blockID)
	if err != nil {
		return err
	}
	var content domain.TableContent
	if err := json.Unmarshal([]byte(b.Content), &content); err != nil || content.RefreshCron == "" {
		return nil
	}

	entryID, err := sched.AddFunc(content.RefreshCron, func() {
		if _, err := s.RefreshBlock(ctx, blockID); err != nil {
			log.Printf("scheduled refresh of table block %s: %v", blockID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("bad cron spec %q: %w", content.RefreshCron, err)
	}

	s.mu.Lock()
	s.cronIDs[blockID] = entryID
	s.mu.Unlock()
	return nil
}

// Close stops the scheduler and all open connectors.
func (s *TableService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
	for id, c := range s.connectors {
		c.Close()
		delete(s.connectors, id)
	}
}
