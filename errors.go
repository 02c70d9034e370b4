package envschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/envschema/i18n"
)

// Issue codes reported by Build.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeOutOfRange  = "out_of_range"
	CodeInvalidEnum = "invalid_enum"
)

// Issue represents a single validation finding produced while building.
type Issue struct {
	Path    string // dotted schema path (for example: servers.0.port); empty for the root.
	Key     string // flat environment key without the prefix (for example: SERVERS_0_PORT).
	Code    string // One of the codes listed above.
	Message string
	// Value is the offending raw string for type, range and enum findings.
	Value string
	// Params carries structured parameters (e.g., {"bound":0, "limit":"minimum"}).
	Params map[string]any
}

// Location returns the dotted path, or "(root)" for the document root.
func (it Issue) Location() string { return displayPath(it.Path) }

// Issues is a collection of validation findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at age
		fmt.Fprintf(b, "%s at %s", it.Code, displayPath(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the issue codes in order, mostly useful in tests and logs.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// At returns the issues recorded for the given dotted path.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports a schema document that cannot be turned into a Node tree.
type SchemaError struct {
	Pointer string // JSON Pointer into the schema document.
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at %s: %s", e.Pointer, e.Message)
}

func schemaErrorf(p pointer, format string, a ...any) *SchemaError {
	return &SchemaError{Pointer: p.String(), Message: fmt.Sprintf(format, a...)}
}

func newIssue(p path, key, code, value string, params map[string]any) Issue {
	data := map[string]string{"value": value}
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return Issue{
		Path:    p.Dotted(),
		Key:     key,
		Code:    code,
		Message: i18n.T(code, data),
		Value:   value,
		Params:  params,
	}
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
