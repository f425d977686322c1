// Package watcher reports changes to a keymap file so the host can reload
// the layout while the driver runs.
package watcher

import (
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event describes new file content that has settled.
type Event struct {
	Path      string
	Hash      [32]byte
	Size      int64
	Timestamp time.Time
}

// Watcher monitors one file. It watches the parent directory so editors
// that save by rename are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration

	mu        sync.Mutex
	pending   bool
	changedAt time.Time
	lastHash  [32]byte

	events chan Event
	errors chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for path. Changes are reported once the file has
// been quiet for debounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		path:      absPath,
		debounce:  debounce,
		events:    make(chan Event, 8),
		errors:    make(chan error, 8),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start records the current content and begins watching. On error the
// watcher is released and Stop must not be called.
func (w *Watcher) Start() error {
	hash, _, err := HashFile(w.path)
	if err != nil {
		w.fsWatcher.Close()
		return err
	}
	w.lastHash = hash

	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		w.fsWatcher.Close()
		return err
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
	return nil
}

// Stop shuts the watcher down and closes its channels.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return err
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			w.pending = true
			w.changedAt = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// debounceLoop emits an event once a pending change has settled.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.checkStable(now)
		}
	}
}

// checkStable hashes the file outside the lock and emits an event when the
// content differs from the last reported version.
func (w *Watcher) checkStable(now time.Time) {
	w.mu.Lock()
	if !w.pending || now.Sub(w.changedAt) < w.debounce {
		w.mu.Unlock()
		return
	}
	changedAt := w.changedAt
	w.mu.Unlock()

	hash, size, err := HashFile(w.path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.changedAt != changedAt {
		// Modified while hashing; wait for it to settle again.
		return
	}
	w.pending = false

	if err != nil {
		// A rename-save may leave the file briefly missing; the create that
		// follows marks it pending again.
		if !os.IsNotExist(err) {
			w.report(err)
		}
		return
	}
	if hash == w.lastHash {
		return
	}

	select {
	case w.events <- Event{Path: w.path, Hash: hash, Size: size, Timestamp: now}:
		w.lastHash = hash
	default:
		// Channel full; retry on the next tick.
		w.pending = true
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// HashFile computes the SHA-256 of a file.
func HashFile(path string) ([32]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return [32]byte{}, 0, err
	}

	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return hash, size, nil
}
