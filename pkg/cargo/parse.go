// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// MaxManifestSize bounds how much of a single manifest is decoded.
const MaxManifestSize = 4 << 20

var (
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("malformed manifest")
	// ErrRead is the sentinel error wrapped by ReadError.
	ErrRead = errors.New("unreadable manifest")
)

type (
	// ParseError is returned when manifest text is not valid TOML or does not
	// fit the manifest schema. Row and Column are 1-based and zero when the
	// decoder did not report a position.
	ParseError struct {
		Path   string
		Row    int
		Column int
		Err    error
	}

	// ReadError is returned when a discovered manifest cannot be read.
	ReadError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Row > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", where, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

// Unwrap returns both ErrParse and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrRead and the underlying I/O error.
func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

// Parse decodes manifest text. A syntactically valid document without any
// top-level keys is returned with Empty set rather than as an error.
func Parse(data []byte) (*Manifest, error) {
	if len(data) > MaxManifestSize {
		return nil, &ParseError{Err: fmt.Errorf("manifest is %d bytes, limit is %d", len(data), MaxManifestSize)}
	}

	var top map[string]any
	if err := toml.Unmarshal(data, &top); err != nil {
		return nil, newParseError(err)
	}
	if len(top) == 0 {
		return &Manifest{Empty: true}, nil
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, newParseError(err)
	}
	return &m, nil
}

// ParseFile reads and decodes the manifest at path.
func ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}

	return &Record{Path: path, Manifest: m}, nil
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		pe.Row, pe.Column = decodeErr.Position()
	}
	return pe
}
