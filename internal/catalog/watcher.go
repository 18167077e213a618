package catalog

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of catalog file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // Catalog file written or recreated
	ChangeRemoved                    // Catalog file deleted or renamed away
)

// Change is a debounced notification that the watched catalog changed.
type Change struct {
	Kind ChangeKind
	File string // Absolute path
}

// Watcher monitors one catalog file for changes using fsnotify. The parent
// directory is watched so editors that save by rename are still seen.
type Watcher struct {
	File    string
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the catalog file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		File:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the catalog file.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: editors often emit several events per save.
	const debounce = 100 * time.Millisecond
	var (
		pending  bool
		lastSeen time.Time
		lastKind ChangeKind
	)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit(lastKind)
				}
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				lastKind = ChangeModified
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				lastKind = ChangeRemoved
			default:
				continue
			}
			pending = true
			lastSeen = time.Now()

		case <-ticker.C:
			if pending && time.Since(lastSeen) >= debounce {
				w.emit(lastKind)
				pending = false
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func (w *Watcher) emit(kind ChangeKind) {
	w.changes <- Change{Kind: kind, File: w.File}
}
