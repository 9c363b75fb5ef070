// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"fmt"
	"time"

	"github.com/cargotally/cargotally/pkg/cargo"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cargotally"

// Recorder holds the metrics of a single run on its own registry, so several
// recorders (one per test, for example) never collide.
//
// All methods are safe to call on a nil *Recorder and do nothing.
type Recorder struct {
	registry *prometheus.Registry

	manifestsDiscovered prometheus.Counter
	manifestsParsed     prometheus.Counter
	manifestsEmpty      prometheus.Counter
	manifestsSkipped    prometheus.Counter
	internalPackages    prometheus.Gauge
	reportEntries       *prometheus.GaugeVec
	scanDuration        prometheus.Gauge
}

// NewRecorder creates a Recorder with every metric registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		manifestsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_discovered_total",
			Help:      "Number of manifest files found under the scan root.",
		}),
		manifestsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_parsed_total",
			Help:      "Number of manifest files parsed successfully.",
		}),
		manifestsEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_empty_total",
			Help:      "Number of parsed manifests with no content, ignored by the tally.",
		}),
		manifestsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_skipped_total",
			Help:      "Number of unparseable manifests skipped in lenient mode.",
		}),
		internalPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "internal_packages",
			Help:      "Number of distinct package names declared by the scanned manifests.",
		}),
		reportEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_entries",
			Help:      "Number of report rows per dependency group.",
		}, []string{"group"}),
		scanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock time of the last scan.",
		}),
	}

	r.registry.MustRegister(
		r.manifestsDiscovered,
		r.manifestsParsed,
		r.manifestsEmpty,
		r.manifestsSkipped,
		r.internalPackages,
		r.reportEntries,
		r.scanDuration,
	)

	// Pre-create every group series so a group without entries reports 0.
	for _, g := range cargo.Groups() {
		r.reportEntries.WithLabelValues(g.String())
	}

	return r
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ManifestsDiscovered adds n to the discovered counter.
func (r *Recorder) ManifestsDiscovered(n int) {
	if r == nil {
		return
	}
	r.manifestsDiscovered.Add(float64(n))
}

// ManifestParsed counts one successfully parsed manifest.
func (r *Recorder) ManifestParsed() {
	if r == nil {
		return
	}
	r.manifestsParsed.Inc()
}

// ManifestEmpty counts one empty manifest.
func (r *Recorder) ManifestEmpty() {
	if r == nil {
		return
	}
	r.manifestsEmpty.Inc()
}

// ManifestSkipped counts one manifest skipped in lenient mode.
func (r *Recorder) ManifestSkipped() {
	if r == nil {
		return
	}
	r.manifestsSkipped.Inc()
}

// InternalPackages sets the size of the internal package set.
func (r *Recorder) InternalPackages(n int) {
	if r == nil {
		return
	}
	r.internalPackages.Set(float64(n))
}

// ReportEntries sets the number of report rows for group.
func (r *Recorder) ReportEntries(group cargo.Group, n int) {
	if r == nil {
		return
	}
	r.reportEntries.WithLabelValues(group.String()).Set(float64(n))
}

// ScanDuration records how long the scan took.
func (r *Recorder) ScanDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.scanDuration.Set(d.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
