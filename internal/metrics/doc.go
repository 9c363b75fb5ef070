// SPDX-License-Identifier: MPL-2.0

// Package metrics records per-run scan statistics as Prometheus metrics and
// writes them in the text exposition format for a node-exporter textfile
// collector.
package metrics
