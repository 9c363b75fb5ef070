// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/cargotally/cargotally/pkg/cargo"
)

type (
	// Discovery finds manifest files below a root directory.
	Discovery struct {
		root         string
		manifestName string
		exclude      []string
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	// Result is the outcome of a full discovery pass.
	Result struct {
		// Paths are the absolute manifest paths in walk order.
		Paths []string
		// Diagnostics are the entries skipped during the walk.
		Diagnostics []Diagnostic
	}

	// entryError is yielded by Walk for sub-entries that could not be read.
	// DiscoverAll converts it to a Diagnostic; any other yielded error is fatal.
	entryError struct {
		path string
		err  error
	}
)

// WithManifestName overrides the manifest file name (default "Cargo.toml").
func WithManifestName(name string) Option {
	return func(d *Discovery) {
		if name != "" {
			d.manifestName = name
		}
	}
}

// WithExclude skips directories whose base name matches any of the given
// filepath.Match patterns. The root directory itself is never excluded.
func WithExclude(patterns ...string) Option {
	return func(d *Discovery) {
		d.exclude = append(d.exclude, patterns...)
	}
}

// New creates a Discovery rooted at root.
func New(root string, opts ...Option) *Discovery {
	d := &Discovery{
		root:         root,
		manifestName: cargo.DefaultManifestName,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the configured root directory.
func (d *Discovery) Root() string { return d.root }

// ManifestName returns the file name being searched for.
func (d *Discovery) ManifestName() string { return d.manifestName }

// Walk returns a lazy sequence of absolute manifest paths.
//
// A failure on the root is yielded once as a *RootError and ends the
// sequence. Unreadable sub-entries are yielded as errors satisfying
// IsEntryError and the walk continues past them. Context cancellation is
// yielded as ctx.Err() and ends the sequence.
func (d *Discovery) Walk(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		absRoot, err := d.checkRoot()
		if err != nil {
			yield("", err)
			return
		}

		walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				if path == absRoot {
					return &RootError{Root: d.root, Err: err}
				}
				if !yield(path, &entryError{path: path, err: err}) {
					return fs.SkipAll
				}
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if entry.IsDir() {
				if path != absRoot && d.isExcluded(entry.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			if entry.Name() != d.manifestName {
				return nil
			}

			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})

		if walkErr != nil {
			yield("", walkErr)
		}
	}
}

// DiscoverAll walks the whole tree and collects every manifest path.
// Unreadable sub-entries become diagnostics; root and context failures are
// returned as errors.
func (d *Discovery) DiscoverAll(ctx context.Context) (Result, error) {
	var result Result
	for path, err := range d.Walk(ctx) {
		if err != nil {
			var ee *entryError
			if errors.As(err, &ee) {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeEntryUnreadable,
					Message:  fmt.Sprintf("skipping unreadable entry: %v", ee.err),
					Path:     ee.path,
					Cause:    ee.err,
				})
				continue
			}
			return Result{}, err
		}
		result.Paths = append(result.Paths, path)
	}
	return result, nil
}

// IsEntryError reports whether err was yielded by Walk for a skipped sub-entry.
func IsEntryError(err error) bool {
	var ee *entryError
	return errors.As(err, &ee)
}

func (e *entryError) Error() string {
	return fmt.Sprintf("%s: %v", e.path, e.err)
}

func (e *entryError) Unwrap() error { return e.err }

// checkRoot resolves the root to an absolute path and verifies it is a directory.
func (d *Discovery) checkRoot() (string, error) {
	absRoot, err := filepath.Abs(d.root)
	if err != nil {
		return "", &RootError{Root: d.root, Err: err}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", &RootError{Root: d.root, Err: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: d.root, Err: fmt.Errorf("%s is not a directory", absRoot)}
	}

	return absRoot, nil
}

func (d *Discovery) isExcluded(name string) bool {
	for _, pattern := range d.exclude {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
