package envschema

import (
	json "github.com/goccy/go-json"
)

// jsonEqual compares two decoded or built JSON values. Numbers compare by value
// whatever their Go representation; objects compare key-wise regardless of order.
func jsonEqual(a, b any) bool {
	if ai, ok := intOf(a); ok {
		if bi, ok := intOf(b); ok {
			return ai == bi
		}
	}
	if af, ok := numberOf(a); ok {
		bf, ok := numberOf(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	ao, ok := objectOf(a)
	if !ok {
		return false
	}
	bo, ok := objectOf(b)
	if !ok || ao.Len() != bo.Len() {
		return false
	}
	for pair := ao.Oldest(); pair != nil; pair = pair.Next() {
		bv, ok := bo.Get(pair.Key)
		if !ok || !jsonEqual(pair.Value, bv) {
			return false
		}
	}
	return true
}

func intOf(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	}
	return 0, false
}
