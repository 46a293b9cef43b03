package app

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"dash/internal/filewatch"
	"dash/internal/service"
	"dash/internal/storage"
	"dash/internal/terminal"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db          *storage.DB
	tabStore    *storage.TabStore
	blockStore  *storage.BlockStore
	workspaces  *service.WorkspaceService
	tabs        *service.TabService
	blocks      *service.BlockService
	tables      *service.TableService
	watch       *filewatch.Watcher
	term        *terminal.Manager
	tabWatcher  *tabWatcher

	sessionMu     sync.Mutex
	canvasSession *canvasSession
}

// New creates a new App.
func New() *App {
	return &App{}
}

// wailsEmitter forwards service and canvas events to the frontend.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "dash")
	dbPath := filepath.Join(dataDir, "dash.db")

	db, err := storage.New(dbPath, filepath.Join(dataDir, "workspaces"))
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}

	emitter := wailsEmitter{ctx: ctx}

	a.db = db
	a.tabStore = storage.NewTabStore(db)
	a.blockStore = storage.NewBlockStore(db)
	a.blocks = service.NewBlockService(a.blockStore, db.DataDir(), emitter)
	a.tabs = service.NewTabService(a.tabStore, a.blocks, emitter)
	a.workspaces = service.NewWorkspaceService(storage.NewWorkspaceStore(db), a.tabs, emitter)
	a.tables = service.NewTableService(storage.NewTableStore(db), a.blockStore, emitter)

	if err := a.tables.StartSchedules(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to start table schedules: %v", err)
	}

	// Embedded terminal: PTY output → base64 → frontend event
	a.term = terminal.New(
		func(data []byte) {
			encoded := base64.StdEncoding.EncodeToString(data)
			wailsRuntime.EventsEmit(ctx, "terminal:data", encoded)
		},
		func(blockID string) {
			a.onEditorExit(blockID)
			wailsRuntime.EventsEmit(ctx, "terminal:exit", map[string]string{
				"blockId": blockID,
			})
		},
	)

	// Backing-file watcher for live preview updates from external editors
	watch, err := filewatch.New(func(blockID, content string) {
		if err := a.blocks.UpdateBlockContent(ctx, blockID, content); err != nil {
			return
		}
		wailsRuntime.EventsEmit(ctx, "block:content-updated", map[string]string{
			"blockId": blockID,
			"content": content,
		})
	})
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to create file watcher: %v", err)
	}
	a.watch = watch

	a.tabWatcher = newTabWatcher(ctx, a)
	a.tabWatcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.tabWatcher != nil {
		a.tabWatcher.Stop()
	}
	if a.term != nil {
		a.term.Close()
	}
	if a.watch != nil {
		a.watch.Close()
	}
	if a.tables != nil {
		a.tables.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
