package source

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DecodeJSON reads one JSON document token by token so that object members
// keep their order. Duplicate keys and trailing data are errors.
func DecodeJSON(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &jsonDecoder{dec: dec}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source: empty JSON document: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("source: invalid JSON: %w", err)
	}
	v, err := d.fromToken(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("source: unexpected data after JSON document")
	}
	return v, nil
}

type jsonDecoder struct {
	dec *j.Decoder
}

func (d *jsonDecoder) next() (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source: truncated JSON document: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("source: invalid JSON: %w", err)
	}
	return tok, nil
}

func (d *jsonDecoder) fromToken(tok any, at string) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return d.object(at)
		case '[':
			return d.array(at)
		}
		return nil, fmt.Errorf("source: unexpected %q at %s", rune(v), display(at))
	case j.Number:
		return v, nil
	case float64:
		return j.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case string, bool, nil:
		return v, nil
	}
	return nil, fmt.Errorf("source: unexpected token %T at %s", tok, display(at))
}

func (d *jsonDecoder) object(at string) (any, error) {
	obj := orderedmap.New[string, any]()
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("source: expected object key at %s", display(at))
		}
		member := child(at, key)
		if _, dup := obj.Get(key); dup {
			return nil, &DuplicateKeyError{Pointer: member, Key: key}
		}
		tok, err = d.next()
		if err != nil {
			return nil, err
		}
		v, err := d.fromToken(tok, member)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func (d *jsonDecoder) array(at string) (any, error) {
	arr := []any{}
	for i := 0; ; i++ {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.fromToken(tok, child(at, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
