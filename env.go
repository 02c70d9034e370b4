package envschema

import (
	"sort"
	"strings"
)

// FlatEnv is an immutable snapshot of prefix-stripped, upper-cased variable
// names mapped to their raw values.
type FlatEnv struct {
	vars map[string]string
}

// NewFlatEnv copies vars, upper-casing every key.
func NewFlatEnv(vars map[string]string) FlatEnv {
	m := make(map[string]string, len(vars))
	for k, v := range vars {
		m[strings.ToUpper(k)] = v
	}
	return FlatEnv{vars: m}
}

// CaptureEnv builds a FlatEnv from KEY=VALUE pairs such as os.Environ(),
// keeping only names that start with prefix.
func CaptureEnv(prefix string, environ []string) FlatEnv {
	m := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key, ok := stripPrefix(prefix, name); ok {
			m[key] = unquote(value)
		}
	}
	return FlatEnv{vars: m}
}

// CaptureMap is CaptureEnv for variables already split into a map.
func CaptureMap(prefix string, vars map[string]string) FlatEnv {
	m := make(map[string]string)
	for name, value := range vars {
		if key, ok := stripPrefix(prefix, name); ok {
			m[key] = unquote(value)
		}
	}
	return FlatEnv{vars: m}
}

// Merge returns a new FlatEnv holding e's variables overlaid with other's.
func (e FlatEnv) Merge(other FlatEnv) FlatEnv {
	m := make(map[string]string, len(e.vars)+len(other.vars))
	for k, v := range e.vars {
		m[k] = v
	}
	for k, v := range other.vars {
		m[k] = v
	}
	return FlatEnv{vars: m}
}

func (e FlatEnv) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

func (e FlatEnv) Len() int { return len(e.vars) }

// Keys returns every key in sorted order.
func (e FlatEnv) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysUnder returns the sorted keys that start with prefix and are longer than it.
func (e FlatEnv) KeysUnder(prefix string) []string {
	var keys []string
	for k := range e.vars {
		if len(k) > len(prefix) && strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// lookup resolves a schema path, trying the plain key before the form with
// doubled underscores.
func (e FlatEnv) lookup(p path) (key, value string, ok bool) {
	key = p.Key()
	if value, ok = e.vars[key]; ok {
		return key, value, true
	}
	if esc := p.EscapedKey(); esc != key {
		if value, ok = e.vars[esc]; ok {
			return esc, value, true
		}
	}
	return key, "", false
}

func stripPrefix(prefix, name string) (string, bool) {
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.ToUpper(strings.TrimPrefix(name, prefix)), true
}

// unquote removes one pair of matching surrounding quotes.
func unquote(raw string) string {
	t := strings.TrimSpace(raw)
	if len(t) >= 2 {
		if (t[0] == '"' && t[len(t)-1] == '"') || (t[0] == '\'' && t[len(t)-1] == '\'') {
			return t[1 : len(t)-1]
		}
	}
	return raw
}
