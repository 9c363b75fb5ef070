// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when manifests below a directory tree
// change.
//
// Every non-excluded directory under the root is registered with fsnotify.
// Events on files named like the manifest, on newly created directories and
// on removed or renamed watched directories are collected and, after a quiet
// period, handed to the callback in a single batch.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cargotally/cargotally/pkg/cargo"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce lets an editor's write-then-rename settle into one rescan.
const defaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned when Run is called a second time.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are doublestar patterns matched against directory paths
// relative to the root. They never hold manifests worth rescanning for.
var defaultIgnores = []string{
	"**/.git",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the directory tree to watch. Empty means the working directory.
		Root string

		// ManifestName is the file name whose changes trigger a rescan.
		// Empty means cargo.DefaultManifestName.
		ManifestName string

		// Exclude are directory base-name globs, in the same form the scanner
		// accepts. Matching directories are not watched.
		Exclude []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange receives the deduplicated, sorted list of changed paths
		// relative to Root. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors a tree and fires a debounced callback when manifests
	// change. Run must be called exactly once.
	Watcher struct {
		cfg          Config
		fsw          *fsnotify.Watcher
		ignores      []string
		logger       *log.Logger
		debounce     time.Duration
		root         string
		manifestName string
		// dirs is only touched by New and the Run event loop.
		dirs    map[string]struct{}
		started atomic.Bool
	}
)

// New creates a Watcher from cfg and registers every non-excluded directory
// below the root.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", absRoot)
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Exclude))
	ignores = append(ignores, defaultIgnores...)
	for _, glob := range cfg.Exclude {
		pattern := "**/" + filepath.ToSlash(glob)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("watch: invalid exclude pattern %q", glob)
		}
		ignores = append(ignores, pattern)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	manifestName := cfg.ManifestName
	if manifestName == "" {
		manifestName = cargo.DefaultManifestName
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:          cfg,
		fsw:          fsw,
		ignores:      ignores,
		logger:       logger,
		debounce:     debounce,
		root:         absRoot,
		manifestName: manifestName,
		dirs:         make(map[string]struct{}),
	}

	if err := w.addTree(absRoot); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "error", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string { return w.root }

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire can be scheduled after cancellation, hence the ctx check. A
	// callback that outlasts the debounce window makes the next fire retry
	// later instead of running concurrently.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("rescan still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Warn("rescan failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel, relevant := w.handle(evt)
			if !relevant {
				continue
			}
			w.logger.Debug("manifest change", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// handle updates the watched directory set for evt and reports whether the
// event can change the scan result, together with its root-relative path.
func (w *Watcher) handle(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)

	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		if _, watched := w.dirs[evt.Name]; watched {
			w.forgetTree(evt.Name)
			return rel, true
		}
	}

	if evt.Has(fsnotify.Create) {
		if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
			if w.isIgnored(rel) {
				return rel, false
			}
			if addErr := w.addTree(evt.Name); addErr != nil {
				w.logger.Warn("watch new directory", "path", evt.Name, "error", addErr)
			}
			return rel, true
		}
	}

	if filepath.Base(evt.Name) != w.manifestName {
		return rel, false
	}
	if evt.Op == fsnotify.Chmod {
		return rel, false
	}
	return rel, true
}

// addTree registers dir and every non-ignored directory below it. Unreadable
// sub-directories are logged and skipped; a failure on dir itself is returned.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			w.logger.Warn("skipping unreadable directory", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if path != w.root {
			rel, relErr := filepath.Rel(w.root, path)
			if relErr == nil && w.isIgnored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		w.dirs[path] = struct{}{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

// forgetTree drops dir and its sub-directories from the watched set. fsnotify
// removes the kernel watches on its own once the directories are gone.
func (w *Watcher) forgetTree(dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range w.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.dirs, path)
		}
	}
}

// isIgnored reports whether the root-relative directory path rel matches a
// default ignore or an exclude glob.
func (w *Watcher) isIgnored(rel string) bool {
	for _, pattern := range w.ignores {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// watchedDirs returns the sorted set of watched directories.
func (w *Watcher) watchedDirs() []string {
	return slices.Sorted(maps.Keys(w.dirs))
}
