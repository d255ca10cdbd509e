package server

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"pacman/internal/logging"
)

// UsersWatcher reloads a Directory whenever the users file changes on disk.
// It watches the file's parent directory so editors that save by renaming a
// temp file are still noticed.
type UsersWatcher struct {
	fs        afero.Fs
	path      string
	directory *Directory
	watcher   *fsnotify.Watcher

	debounceDur time.Duration

	mu      sync.Mutex
	reloads int
	pending time.Time
}

// NewUsersWatcher creates a watcher for path. fs is used for reading; the
// change notifications always come from the OS.
func NewUsersWatcher(fs afero.Fs, path string, directory *Directory) (*UsersWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve users file: %w", err)
	}
	return &UsersWatcher{
		fs:          fs,
		path:        abs,
		directory:   directory,
		watcher:     watcher,
		debounceDur: 100 * time.Millisecond, // Debounce rapid saves
	}, nil
}

// Reloads returns how many times the directory has been reloaded.
func (uw *UsersWatcher) Reloads() int {
	uw.mu.Lock()
	defer uw.mu.Unlock()
	return uw.reloads
}

// Run watches until ctx is cancelled. It always closes the underlying
// watcher before returning.
func (uw *UsersWatcher) Run(ctx context.Context) error {
	defer uw.watcher.Close()

	dir := filepath.Dir(uw.path)
	if err := uw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Users("watching users file: %s", uw.path)

	ticker := time.NewTicker(uw.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Users("users watcher stopped")
			return nil

		case event, ok := <-uw.watcher.Events:
			if !ok {
				return nil
			}
			uw.handleEvent(event)

		case err, ok := <-uw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.UsersWarn("users watcher error: %v", err)

		case <-ticker.C:
			uw.processDebounced()
		}
	}
}

func (uw *UsersWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != uw.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	logging.Get(logging.CategoryUsers).Debug("users file event: %s", event.Op)

	uw.mu.Lock()
	uw.pending = time.Now()
	uw.mu.Unlock()
}

func (uw *UsersWatcher) processDebounced() {
	uw.mu.Lock()
	if uw.pending.IsZero() || time.Since(uw.pending) < uw.debounceDur {
		uw.mu.Unlock()
		return
	}
	uw.pending = time.Time{}
	uw.mu.Unlock()

	users, err := LoadUsers(uw.fs, uw.path)
	if err != nil {
		// Keep the previous list; the file may be mid-rename.
		logging.UsersWarn("reload failed, keeping %d users: %v", uw.directory.Len(), err)
		return
	}
	uw.directory.Replace(users)

	uw.mu.Lock()
	uw.reloads++
	uw.mu.Unlock()
	logging.Users("reloaded %d users", len(users))
}
