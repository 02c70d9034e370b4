package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DecodeYAML reads the first YAML document into the same shape DecodeJSON
// produces. Mapping order is kept, aliases are expanded and scalars are
// resolved by their YAML tag.
func DecodeYAML(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source: empty YAML document: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("source: invalid YAML: %w", err)
	}
	d := &yamlDecoder{
		expanding: make(map[*yaml.Node]bool),
		budget:    max(minYAMLBudget, yamlAliasRatio*countNodes(&doc)),
	}
	return d.fromYAML(&doc, "")
}

const (
	// Alias expansion may grow a document to yamlAliasRatio times its literal
	// size, and always to at least minYAMLBudget nodes.
	yamlAliasRatio = 10
	minYAMLBudget  = 10000
)

type yamlDecoder struct {
	expanding map[*yaml.Node]bool // anchors currently being expanded
	budget    int                 // nodes left to produce
}

// countNodes counts the nodes written in the document, not following aliases.
func countNodes(n *yaml.Node) int {
	c := 1
	for _, ch := range n.Content {
		c += countNodes(ch)
	}
	return c
}

func (d *yamlDecoder) fromYAML(n *yaml.Node, at string) (any, error) {
	d.budget--
	if d.budget < 0 {
		return nil, fmt.Errorf("source: YAML aliases expand beyond %dx the document size at %s", yamlAliasRatio, display(at))
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.fromYAML(n.Content[0], at)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("source: unknown YAML alias %q at %s (line %d)", n.Value, display(at), n.Line)
		}
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("source: YAML alias %q refers to itself at %s (line %d)", n.Value, display(at), n.Line)
		}
		d.expanding[n.Alias] = true
		v, err := d.fromYAML(n.Alias, at)
		delete(d.expanding, n.Alias)
		return v, err
	case yaml.MappingNode:
		obj := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("source: non-scalar mapping key at %s (line %d)", display(at), k.Line)
			}
			member := child(at, k.Value)
			if _, dup := obj.Get(k.Value); dup {
				return nil, &DuplicateKeyError{Pointer: member, Key: k.Value}
			}
			val, err := d.fromYAML(v, member)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, item := range n.Content {
			val, err := d.fromYAML(item, child(at, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n, at)
	}
	return nil, fmt.Errorf("source: unsupported YAML node at %s (line %d)", display(at), n.Line)
}

func yamlScalar(n *yaml.Node, at string) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("source: %s: %w", display(at), err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("source: %s: %w", display(at), err)
		}
		return j.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("source: %s: %w", display(at), err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("source: %s: %s has no JSON representation", display(at), n.Value)
		}
		return j.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	}
	return n.Value, nil
}
