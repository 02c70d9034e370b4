package main

import (
	"bytes"
	"strings"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// encodeDocument renders a built value as JSON. Object members keep their
// order and '<', '>' and '&' are written literally. An indent of 0 gives
// compact output.
func encodeDocument(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}
	if indent == 0 {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := j.Indent(&out, buf.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		buf.WriteByte('{')
		first := true
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := appendJSON(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendJSON(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := j.MarshalWithOption(v, j.DisableHTMLEscape())
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}
