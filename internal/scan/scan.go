// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cargotally/cargotally/internal/discovery"
	"github.com/cargotally/cargotally/internal/metrics"
	"github.com/cargotally/cargotally/internal/tally"
	"github.com/cargotally/cargotally/pkg/cargo"

	"github.com/charmbracelet/log"
)

type (
	// Scanner runs scans with a fixed set of options.
	Scanner struct {
		manifestName string
		exclude      []string
		lenient      bool
		logger       *log.Logger
		metrics      *metrics.Recorder
		now          func() time.Time
	}

	// Option configures a Scanner.
	Option func(*Scanner)

	// Stats summarizes how many manifests went through each stage.
	Stats struct {
		Discovered int
		Parsed     int
		Empty      int
		Skipped    int
	}

	// Result is the outcome of a successful scan.
	Result struct {
		Entries     []tally.Entry
		Internal    tally.PackageSet
		Stats       Stats
		Diagnostics []discovery.Diagnostic
	}
)

// WithManifestName sets the manifest file name to search for.
func WithManifestName(name string) Option {
	return func(s *Scanner) { s.manifestName = name }
}

// WithExclude skips directories whose base name matches one of patterns.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) { s.exclude = append(s.exclude, patterns...) }
}

// WithLenient makes unparseable manifests a diagnostic instead of a failure.
func WithLenient(lenient bool) Option {
	return func(s *Scanner) { s.lenient = lenient }
}

// WithLogger sets the logger for progress messages. Nil keeps the silent default.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records run statistics into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Scanner) { s.metrics = r }
}

// New creates a Scanner. Without options it looks for Cargo.toml, fails on
// the first bad manifest and logs nothing.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		manifestName: cargo.DefaultManifestName,
		logger:       log.New(io.Discard),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans root and returns the report entries.
//
// In strict mode the first *cargo.ParseError or *cargo.ReadError ends the run.
// In lenient mode parse failures are recorded as diagnostics and the
// manifest is left out of both the internal set and the counts; read
// failures stay fatal either way.
func (s *Scanner) Run(ctx context.Context, root string) (*Result, error) {
	start := s.now()
	s.logger.Debug("scan started", "root", root, "manifest", s.manifestName, "lenient", s.lenient)

	d := discovery.New(root,
		discovery.WithManifestName(s.manifestName),
		discovery.WithExclude(s.exclude...),
	)
	found, err := d.DiscoverAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Diagnostics: found.Diagnostics}
	result.Stats.Discovered = len(found.Paths)
	s.metrics.ManifestsDiscovered(len(found.Paths))
	for _, diag := range found.Diagnostics {
		s.logger.Warn(diag.Message, "path", diag.Path, "code", diag.Code)
	}

	records, err := s.parseAll(ctx, found.Paths, result)
	if err != nil {
		return nil, err
	}

	result.Internal = tally.InternalPackages(records)
	s.metrics.InternalPackages(result.Internal.Len())
	s.logger.Debug("internal packages", "count", result.Internal.Len(), "names", result.Internal.Sorted())

	agg := tally.NewAggregator(result.Internal)
	for _, rec := range records {
		agg.Add(rec)
	}
	result.Entries = agg.Entries()

	perGroup := make(map[cargo.Group]int, len(cargo.Groups()))
	for _, e := range result.Entries {
		perGroup[e.Group]++
	}
	for _, g := range cargo.Groups() {
		s.metrics.ReportEntries(g, perGroup[g])
	}

	elapsed := s.now().Sub(start)
	s.metrics.ScanDuration(elapsed)
	s.logger.Info("scan complete",
		"manifests", result.Stats.Discovered,
		"empty", result.Stats.Empty,
		"skipped", result.Stats.Skipped,
		"entries", len(result.Entries),
		"duration", elapsed,
	)

	return result, nil
}

func (s *Scanner) parseAll(ctx context.Context, paths []string, result *Result) ([]*cargo.Record, error) {
	records := make([]*cargo.Record, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cargo.ParseFile(path)
		if err != nil {
			var pe *cargo.ParseError
			if s.lenient && errors.As(err, &pe) {
				result.Stats.Skipped++
				s.metrics.ManifestSkipped()
				result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
					Severity: discovery.SeverityWarning,
					Code:     discovery.CodeManifestParseSkipped,
					Message:  fmt.Sprintf("skipping unparseable manifest: %v", pe.Err),
					Path:     path,
					Cause:    err,
				})
				s.logger.Warn("skipping unparseable manifest", "path", path, "error", pe.Err)
				continue
			}
			return nil, err
		}

		result.Stats.Parsed++
		s.metrics.ManifestParsed()
		if rec.IsEmpty() {
			result.Stats.Empty++
			s.metrics.ManifestEmpty()
			s.logger.Debug("ignoring empty manifest", "path", path)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
