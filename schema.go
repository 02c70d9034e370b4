package envschema

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the closed set of node kinds understood by the builder.
type Kind int

const (
	KindAny Kind = iota // no type declared: raw strings pass through
	KindObject
	KindArray
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindNull
)

var kindNames = map[string]Kind{
	"object":  KindObject,
	"array":   KindArray,
	"string":  KindString,
	"integer": KindInteger,
	"number":  KindNumber,
	"boolean": KindBoolean,
	"null":    KindNull,
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	return "any"
}

// IsScalar reports whether values of this kind come from a single variable.
func (k Kind) IsScalar() bool {
	return k != KindObject && k != KindArray
}

// Property is a named child of an object node.
type Property struct {
	Name string
	Node *Node
}

// Node is one parsed schema subtree. Nodes are not modified after ParseSchema
// returns, so a tree can be shared by concurrent builds.
type Node struct {
	Kind       Kind
	Properties []Property // declaration order; object only
	Required   []string   // object only
	Items      *Node      // array only; nil means untyped elements
	Minimum    *float64
	Maximum    *float64
	Enum       []any
}

// Property returns the child node declared under name.
func (n *Node) Property(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed under required.
func (n *Node) IsRequired(name string) bool {
	return slices.Contains(n.Required, name)
}

// ParseSchema turns a decoded schema document into a Node tree. Objects in doc
// may be *orderedmap.OrderedMap[string, any], which keeps property declaration
// order, or map[string]any, whose keys are taken in sorted order.
//
// Only local references ("#/...") are followed; the referenced subtree replaces
// the node that holds $ref.
func ParseSchema(doc any) (*Node, error) {
	if _, ok := objectOf(doc); !ok {
		return nil, schemaErrorf(pointer{}, "schema root must be an object, got %s", describe(doc))
	}
	p := &parser{root: doc, resolving: make(map[string]bool)}
	return p.node(doc, pointer{})
}

type parser struct {
	root      any
	resolving map[string]bool // references currently being expanded
}

func (p *parser) node(v any, at pointer) (*Node, error) {
	if b, ok := v.(bool); ok {
		if b {
			return &Node{Kind: KindAny}, nil
		}
		return nil, schemaErrorf(at, "false schema accepts no value")
	}
	obj, ok := objectOf(v)
	if !ok {
		return nil, schemaErrorf(at, "schema must be an object, got %s", describe(v))
	}
	if raw, ok := obj.Get("$ref"); ok {
		return p.ref(raw, at.Field("$ref"))
	}

	n := &Node{}
	if err := p.kind(n, obj, at); err != nil {
		return nil, err
	}
	if err := p.bounds(n, obj, at); err != nil {
		return nil, err
	}
	if raw, ok := obj.Get("enum"); ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, schemaErrorf(at.Field("enum"), "enum must be an array, got %s", describe(raw))
		}
		n.Enum = list
	}

	switch n.Kind {
	case KindObject:
		if _, ok := obj.Get("items"); ok {
			return nil, schemaErrorf(at.Field("items"), "items is not allowed on an object schema")
		}
		if err := p.properties(n, obj, at); err != nil {
			return nil, err
		}
	case KindArray:
		for _, kw := range []string{"properties", "required"} {
			if _, ok := obj.Get(kw); ok {
				return nil, schemaErrorf(at.Field(kw), "%s is not allowed on an array schema", kw)
			}
		}
		if raw, ok := obj.Get("items"); ok {
			if _, isObj := objectOf(raw); !isObj {
				return nil, schemaErrorf(at.Field("items"), "items must be an object, got %s", describe(raw))
			}
			items, err := p.node(raw, at.Field("items"))
			if err != nil {
				return nil, err
			}
			n.Items = items
		}
	}
	return n, nil
}

func (p *parser) kind(n *Node, obj *orderedmap.OrderedMap[string, any], at pointer) error {
	raw, ok := obj.Get("type")
	if !ok {
		if _, hasProps := obj.Get("properties"); hasProps {
			n.Kind = KindObject
		} else {
			n.Kind = KindAny
		}
		return nil
	}
	name, ok := raw.(string)
	if !ok {
		return schemaErrorf(at.Field("type"), "type must be a string, got %s", describe(raw))
	}
	k, ok := kindNames[name]
	if !ok {
		return schemaErrorf(at.Field("type"), "unknown type %q", name)
	}
	n.Kind = k
	return nil
}

func (p *parser) bounds(n *Node, obj *orderedmap.OrderedMap[string, any], at pointer) error {
	for _, kw := range []string{"minimum", "maximum"} {
		raw, ok := obj.Get(kw)
		if !ok {
			continue
		}
		f, ok := numberOf(raw)
		if !ok {
			return schemaErrorf(at.Field(kw), "%s must be a number, got %s", kw, describe(raw))
		}
		if kw == "minimum" {
			n.Minimum = &f
		} else {
			n.Maximum = &f
		}
	}
	return nil
}

func (p *parser) properties(n *Node, obj *orderedmap.OrderedMap[string, any], at pointer) error {
	if raw, ok := obj.Get("properties"); ok {
		props, ok := objectOf(raw)
		if !ok {
			return schemaErrorf(at.Field("properties"), "properties must be an object, got %s", describe(raw))
		}
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			child, err := p.node(pair.Value, at.Field("properties").Field(pair.Key))
			if err != nil {
				return err
			}
			n.Properties = append(n.Properties, Property{Name: pair.Key, Node: child})
		}
	}
	raw, ok := obj.Get("required")
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return schemaErrorf(at.Field("required"), "required must be an array, got %s", describe(raw))
	}
	for i, item := range list {
		name, ok := item.(string)
		if !ok {
			return schemaErrorf(at.Field("required").Index(i), "required entries must be strings, got %s", describe(item))
		}
		if slices.Contains(n.Required, name) {
			continue
		}
		n.Required = append(n.Required, name)
		// A required name with no declared schema still has to be supplied.
		if _, declared := n.Property(name); !declared {
			n.Properties = append(n.Properties, Property{Name: name, Node: &Node{Kind: KindAny}})
		}
	}
	return nil
}

func (p *parser) ref(raw any, at pointer) (*Node, error) {
	ref, ok := raw.(string)
	if !ok {
		return nil, schemaErrorf(at, "$ref must be a string, got %s", describe(raw))
	}
	target, ok := parsePointer(ref)
	if !ok {
		return nil, schemaErrorf(at, "$ref %q not supported (local references only)", ref)
	}
	if p.resolving[ref] {
		return nil, schemaErrorf(at, "cyclic $ref %q", ref)
	}
	v, ok := resolvePointer(p.root, target)
	if !ok {
		return nil, schemaErrorf(at, "$ref %q does not resolve", ref)
	}
	p.resolving[ref] = true
	defer delete(p.resolving, ref)
	return p.node(v, target)
}

// resolvePointer walks the document along a JSON Pointer.
func resolvePointer(doc any, ptr pointer) (any, bool) {
	cur := doc
	for _, tok := range ptr.parts {
		tok = unescape(tok)
		switch t := cur.(type) {
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			obj, ok := objectOf(cur)
			if !ok {
				return nil, false
			}
			next, ok := obj.Get(tok)
			if !ok {
				return nil, false
			}
			cur = next
		}
	}
	return cur, true
}

// objectOf returns an ordered view of a decoded JSON object.
func objectOf(v any) (*orderedmap.OrderedMap[string, any], bool) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if t == nil {
			return nil, false
		}
		return t, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		om := orderedmap.New[string, any]()
		for _, k := range keys {
			om.Set(k, t[k])
		}
		return om, true
	}
	return nil, false
}

// numberOf accepts the numeric shapes a decoder may produce.
func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	}
	if _, ok := numberOf(v); ok {
		return "number"
	}
	if _, ok := objectOf(v); ok {
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
