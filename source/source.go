// Package source decodes schema documents into generic values that keep object
// key order: objects become *orderedmap.OrderedMap[string, any], arrays []any,
// numbers json.Number (from github.com/goccy/go-json), plus string, bool and nil.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the document syntax.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON for everything else.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads exactly one document in the given format.
func Decode(r io.Reader, f Format) (any, error) {
	if f == FormatYAML {
		return DecodeYAML(r)
	}
	return DecodeJSON(r)
}

// ReadFile decodes the document stored at path, choosing the format by extension.
func ReadFile(path string) (any, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open schema: %w", err)
	}
	defer fh.Close()
	return Decode(fh, FormatFromPath(path))
}

// DuplicateKeyError reports an object that repeats a key.
type DuplicateKeyError struct {
	Pointer string // JSON Pointer of the repeated member
	Key     string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("source: key %q duplicated at %s", e.Key, e.Pointer)
}

// child extends a JSON Pointer with one escaped reference token.
func child(at, tok string) string {
	return at + "/" + strings.ReplaceAll(strings.ReplaceAll(tok, "~", "~0"), "/", "~1")
}

func display(at string) string {
	if at == "" {
		return "/"
	}
	return at
}
