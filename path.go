package envschema

import (
	"strconv"
	"strings"
)

// path is the chain of property names and array indices from the schema root.
// It renders both as an environment key and as a dotted issue path.
type path struct {
	parts []string
}

func (p path) Field(name string) path {
	return path{parts: append(append([]string{}, p.parts...), name)}
}

func (p path) Index(i int) path {
	return path{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p path) IsRoot() bool { return len(p.parts) == 0 }

// Key renders the flat environment key: segments uppercased and joined with '_'.
func (p path) Key() string {
	return strings.ToUpper(strings.Join(p.parts, "_"))
}

// EscapedKey renders the key with literal underscores inside a segment doubled,
// so FIRST__NAME addresses the property first_name.
func (p path) EscapedKey() string {
	esc := make([]string, len(p.parts))
	for i, s := range p.parts {
		esc[i] = strings.ReplaceAll(s, "_", "__")
	}
	return strings.ToUpper(strings.Join(esc, "_"))
}

// Under returns the key prefix that selects keys strictly below this path.
func (p path) Under() string {
	if p.IsRoot() {
		return ""
	}
	return p.Key() + "_"
}

func (p path) Dotted() string { return strings.Join(p.parts, ".") }

// pointer builds JSON Pointer paths into the schema document.
type pointer struct {
	parts []string
}

func (p pointer) Field(name string) pointer {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return pointer{parts: append(append([]string{}, p.parts...), esc)}
}

func (p pointer) Index(i int) pointer {
	return pointer{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p pointer) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// parsePointer splits a local reference such as "#/$defs/address" into a pointer.
func parsePointer(ref string) (pointer, bool) {
	if ref == "#" {
		return pointer{}, true
	}
	if !strings.HasPrefix(ref, "#/") {
		return pointer{}, false
	}
	return pointer{parts: strings.Split(strings.TrimPrefix(ref, "#/"), "/")}, true
}

// unescape decodes a single RFC6901 reference token.
func unescape(tok string) string {
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
}
