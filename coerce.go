package envschema

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	trueWords  = []string{"true", "1", "yes"}
	falseWords = []string{"false", "0", "no"}
)

// scalar converts one raw variable according to the node kind.
func (b *builder) scalar(n *Node, p path, key, raw string) outcome {
	switch n.Kind {
	case KindInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.mismatch(n, p, key, raw)
		}
		b.checkRange(n, p, key, raw, float64(v), v)
		return outcome{value: v, present: true, found: true, raw: raw}
	case KindNumber:
		if !isDecimal(raw) {
			return b.mismatch(n, p, key, raw)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return b.mismatch(n, p, key, raw)
		}
		b.checkRange(n, p, key, raw, v, v)
		return outcome{value: v, present: true, found: true, raw: raw}
	case KindBoolean:
		v, ok := parseBool(raw)
		if !ok {
			return b.mismatch(n, p, key, raw)
		}
		return outcome{value: v, present: true, found: true, raw: raw}
	case KindNull:
		return outcome{value: nil, present: true, found: true, raw: raw}
	default:
		// string and untyped nodes keep the raw text
		return outcome{value: raw, present: true, found: true, raw: raw}
	}
}

func (b *builder) mismatch(n *Node, p path, key, raw string) outcome {
	b.report(p, key, CodeInvalidType, raw, map[string]any{"expected": n.Kind.String()})
	return outcome{found: true, raw: raw}
}

// checkRange records bound violations; the value itself is kept.
func (b *builder) checkRange(n *Node, p path, key, raw string, f float64, v any) {
	if n.Minimum != nil && f < *n.Minimum {
		b.report(p, key, CodeOutOfRange, raw, map[string]any{"value": v, "bound": *n.Minimum, "limit": "minimum"})
	}
	if n.Maximum != nil && f > *n.Maximum {
		b.report(p, key, CodeOutOfRange, raw, map[string]any{"value": v, "bound": *n.Maximum, "limit": "maximum"})
	}
}

// checkEnum records an enum finding for a present value. Like bounds, the
// value stays in the output.
func (b *builder) checkEnum(n *Node, p path, key string, out outcome) outcome {
	if !out.present || len(n.Enum) == 0 {
		return out
	}
	for _, member := range n.Enum {
		if jsonEqual(out.value, member) {
			return out
		}
	}
	shown := out.raw
	if !n.Kind.IsScalar() {
		if data, err := json.Marshal(out.value); err == nil {
			shown = string(data)
		}
	}
	b.report(p, key, CodeInvalidEnum, shown, map[string]any{"allowed": len(n.Enum)})
	return out
}

// isDecimal reports whether raw is a plain decimal number: an optional sign,
// digits, an optional fraction and an optional exponent. Digit separators and
// hex, binary or octal forms are not decimal.
func isDecimal(raw string) bool {
	i := 0
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		i++
	}
	digits := func() int {
		start := i
		for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
			i++
		}
		return i - start
	}
	if digits() == 0 {
		return false
	}
	if i < len(raw) && raw[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(raw) && (raw[i] == 'e' || raw[i] == 'E') {
		i++
		if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(raw)
}

func parseBool(raw string) (bool, bool) {
	for _, w := range trueWords {
		if strings.EqualFold(raw, w) {
			return true, true
		}
	}
	for _, w := range falseWords {
		if strings.EqualFold(raw, w) {
			return false, true
		}
	}
	return false, false
}
