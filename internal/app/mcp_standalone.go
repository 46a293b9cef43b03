package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mcpserver "dash/internal/mcp"
	"dash/internal/service"
	"dash/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with
// no GUI. The GUI process picks up its writes through the tab watcher.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "dash")
	dbPath := filepath.Join(dataDir, "dash.db")

	db, err := storage.New(dbPath, filepath.Join(dataDir, "workspaces"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	blockStore := storage.NewBlockStore(db)
	emitter := noopEmitter{}

	blocksSvc := service.NewBlockService(blockStore, db.DataDir(), emitter)
	tabsSvc := service.NewTabService(storage.NewTabStore(db), blocksSvc, emitter)
	workspacesSvc := service.NewWorkspaceService(storage.NewWorkspaceStore(db), tabsSvc, emitter)
	tablesSvc := service.NewTableService(storage.NewTableStore(db), blockStore, emitter)
	defer tablesSvc.Close()

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    emitter,
		Workspaces: workspacesSvc,
		Tabs:       tabsSvc,
		Blocks:     blocksSvc,
		Tables:     tablesSvc,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
