// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cargotally/cargotally/internal/testutil"
	"github.com/cargotally/cargotally/pkg/cargo"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ManifestsDiscovered(3)
	r.ManifestParsed()
	r.ManifestParsed()
	r.ManifestEmpty()
	r.ManifestSkipped()
	r.InternalPackages(2)
	r.ReportEntries(cargo.GroupDependencies, 4)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"discovered", promtestutil.ToFloat64(r.manifestsDiscovered), 3},
		{"parsed", promtestutil.ToFloat64(r.manifestsParsed), 2},
		{"empty", promtestutil.ToFloat64(r.manifestsEmpty), 1},
		{"skipped", promtestutil.ToFloat64(r.manifestsSkipped), 1},
		{"internal", promtestutil.ToFloat64(r.internalPackages), 2},
		{"dependencies entries", promtestutil.ToFloat64(r.reportEntries.WithLabelValues("dependencies")), 4},
		{"dev-dependencies entries", promtestutil.ToFloat64(r.reportEntries.WithLabelValues("dev-dependencies")), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := promtestutil.CollectAndCount(r.reportEntries); n != len(cargo.Groups()) {
		t.Errorf("report_entries series = %d, want one per group (%d)", n, len(cargo.Groups()))
	}
}

func TestRecorderNilSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.ManifestsDiscovered(1)
	r.ManifestParsed()
	r.ManifestEmpty()
	r.ManifestSkipped()
	r.InternalPackages(1)
	r.ReportEntries(cargo.GroupDependencies, 1)
	r.ScanDuration(time.Second)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")); err != nil {
		t.Errorf("nil WriteTextfile() = %v, want nil", err)
	}
	if r.Registry() == nil {
		t.Error("nil Registry() returned nil gatherer")
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ManifestsDiscovered(2)
	r.ScanDuration(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "cargotally.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}

	content := testutil.MustReadFile(t, path)
	for _, want := range []string{
		"# TYPE cargotally_manifests_discovered_total counter",
		"cargotally_manifests_discovered_total 2",
		"cargotally_scan_duration_seconds 1.5",
		`cargotally_report_entries{group="build-dependencies"} 0`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q:\n%s", want, content)
		}
	}
}

func TestWriteTextfileMissingDir(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("WriteTextfile() into missing directory succeeded, want error")
	}
}
