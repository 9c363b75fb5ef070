// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cargotally/cargotally/internal/tally"

	"sigs.k8s.io/yaml"
)

const (
	// FormatCSV renders a comma-separated table with a header row.
	FormatCSV Format = "csv"
	// FormatJSON renders an indented JSON array of entries.
	FormatJSON Format = "json"
	// FormatYAML renders a YAML sequence of entries.
	FormatYAML Format = "yaml"

	// Header is the first line of the CSV rendering.
	Header = "group,name,count"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid report format")

type (
	// Format selects the report rendering.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML}
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Validate returns an error if f is not a supported format.
func (f Format) Validate() error {
	switch f {
	case FormatCSV, FormatJSON, FormatYAML:
		return nil
	default:
		return &InvalidFormatError{Value: f}
	}
}

// ContentType returns the MIME type used when uploading the rendering.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: csv, json, yaml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Render serializes entries in the given format. Entries are written in the
// order given; callers pass them already sorted.
func Render(entries []tally.Entry, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return []byte(CSV(entries)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(nonNil(entries), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(nonNil(entries))
		if err != nil {
			return nil, fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		return data, nil
	default:
		return nil, &InvalidFormatError{Value: format}
	}
}

// CSV renders the header and one "group,name,count" line per entry.
func CSV(entries []tally.Entry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, Header)
	for _, e := range entries {
		lines = append(lines, string(e.Group)+","+e.Name+","+strconv.Itoa(e.Count))
	}
	return strings.Join(lines, "\n")
}

// nonNil makes an empty report encode as [] rather than null.
func nonNil(entries []tally.Entry) []tally.Entry {
	if entries == nil {
		return []tally.Entry{}
	}
	return entries
}
