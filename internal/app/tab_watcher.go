package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// tabWatcher polls the database for changes to the active tab,
// detecting external modifications (e.g. from the MCP standalone
// process or a cron refresh) and emitting Wails events so the
// frontend re-renders. Refreshes of the canvas itself go through the
// sync coordinator, which drops them while a local mutation is still
// in flight.
type tabWatcher struct {
	ctx context.Context
	app *App
	mu  sync.Mutex
	// active tab tracking
	tabID     string
	projectID string
	lastBlock string // blocks fingerprint (count + max updated_at)
	// tab list tracking (sidebar refresh)
	lastTabList string
	stopCh      chan struct{}
}

func newTabWatcher(ctx context.Context, app *App) *tabWatcher {
	return &tabWatcher{ctx: ctx, app: app}
}

// SetTab updates the watched tab. Called when the user opens a tab.
func (w *tabWatcher) SetTab(tabID, projectID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabID = tabID
	w.projectID = projectID
	w.lastBlock = ""
	w.lastTabList = ""
}

// Start begins the polling loop. Should be called once on app startup.
func (w *tabWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *tabWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
	}
}

func (w *tabWatcher) pollLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *tabWatcher) check() {
	w.mu.Lock()
	tabID := w.tabID
	projectID := w.projectID
	w.mu.Unlock()

	if tabID == "" {
		return
	}

	blockFingerprint, err := w.app.blockStore.TabFingerprint(tabID)
	if err != nil {
		return
	}

	var tabListFingerprint string
	if projectID != "" {
		db := w.app.db.Conn()
		var count int
		var latest string
		err := db.QueryRow(
			`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM tabs WHERE project_id = ?`, projectID,
		).Scan(&count, &latest)
		if err == nil {
			tabListFingerprint = fmt.Sprintf("%d:%s", count, latest)
		}
	}

	w.mu.Lock()
	blocksChanged := w.lastBlock != "" && w.lastBlock != blockFingerprint
	tabsChanged := w.lastTabList != "" && tabListFingerprint != "" && w.lastTabList != tabListFingerprint
	w.lastBlock = blockFingerprint
	if tabListFingerprint != "" {
		w.lastTabList = tabListFingerprint
	}
	w.mu.Unlock()

	if blocksChanged {
		// The coordinator decides whether the reload is applied or
		// held back behind an unacknowledged local mutation.
		if w.app.refreshActiveCanvas() {
			wailsRuntime.EventsEmit(w.ctx, "canvas:refresh", map[string]string{"tabId": tabID})
		}
	}
	if tabsChanged {
		wailsRuntime.EventsEmit(w.ctx, "tabs:changed", map[string]string{"projectId": projectID})
	}
}
