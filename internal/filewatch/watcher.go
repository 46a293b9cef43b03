package filewatch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangedHandler is called when a watched backing file changes on disk.
type ChangedHandler func(blockID string, content string)

// Watcher keeps block content in sync with backing files edited by
// external tools. When an editor saves the file, the handler receives
// the fresh content so the block can be updated and re-rendered.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange ChangedHandler
	mu       sync.RWMutex
	watching map[string]string // absolute file path -> block id
}

// New creates a watcher and starts its event loop.
func New(onChange ChangedHandler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		onChange: onChange,
		watching: make(map[string]string),
	}

	go w.loop()

	return w, nil
}

// Watch starts tracking a block's backing file.
func (w *Watcher) Watch(blockID, filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.watching[absPath] = blockID
	w.mu.Unlock()

	// fsnotify watches directories, not individual files
	return w.fs.Add(filepath.Dir(absPath))
}

// Unwatch stops tracking whichever file backs the given block.
func (w *Watcher) Unwatch(blockID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, id := range w.watching {
		if id == blockID {
			delete(w.watching, path)
			break
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) {
				absPath, _ := filepath.Abs(event.Name)
				w.mu.RLock()
				blockID, watched := w.watching[absPath]
				w.mu.RUnlock()

				if watched {
					content, err := os.ReadFile(absPath)
					if err != nil {
						log.Printf("filewatch: read %s: %v", absPath, err)
						continue
					}
					if w.onChange != nil {
						w.onChange(blockID, strings.TrimSpace(string(content)))
					}
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("filewatch: watcher error: %v", err)
		}
	}
}
