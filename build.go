package envschema

import (
	"log/slog"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// BuildOptions tunes a single Build call.
type BuildOptions struct {
	// Logger receives debug traces of every lookup and coercion. Nil disables them.
	Logger *slog.Logger
}

// Result is the outcome of one Build. Value holds whatever could be built even
// when Issues is not empty; callers decide whether to use a partial value.
type Result struct {
	Value   any
	Present bool
	Issues  Issues
}

// Err returns the issues as an error, or nil when the build was clean.
func (r Result) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	return r.Issues
}

// Build walks root alongside env and assembles the JSON value the schema
// describes. Objects come back as *orderedmap.OrderedMap[string, any] in schema
// declaration order, integers as int64 and numbers as float64. Findings are
// accumulated in declaration order instead of stopping at the first one.
func Build(root *Node, env FlatEnv, opts BuildOptions) Result {
	b := &builder{env: env, log: opts.Logger}
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	out := b.build(root, path{})
	if root.Kind == KindObject && !out.present {
		out.value = orderedmap.New[string, any]()
		out.present = true
	}
	b.log.Debug("build finished", "present", out.present, "issues", len(b.issues))
	return Result{Value: out.value, Present: out.present, Issues: b.issues}
}

type builder struct {
	env    FlatEnv
	log    *slog.Logger
	issues Issues
}

// outcome describes what one subtree produced. found is true when at least
// one variable under the subtree was looked up successfully, even if its value
// was then rejected.
type outcome struct {
	value   any
	present bool
	found   bool
	raw     string
}

var untyped = &Node{Kind: KindAny}

func (b *builder) build(n *Node, p path) outcome {
	switch n.Kind {
	case KindObject:
		if len(n.Properties) == 0 {
			return b.checkEnum(n, p, p.Key(), b.freeForm(p))
		}
		return b.checkEnum(n, p, p.Key(), b.object(n, p))
	case KindArray:
		return b.checkEnum(n, p, p.Key(), b.array(n, p))
	}
	key, raw, ok := b.env.lookup(p)
	if !ok {
		b.log.Debug("variable not set", "path", p.Dotted(), "key", key)
		return outcome{}
	}
	return b.leaf(n, p, key, raw)
}

func (b *builder) leaf(n *Node, p path, key, raw string) outcome {
	b.log.Debug("coercing", "path", p.Dotted(), "key", key, "kind", n.Kind.String(), "raw", raw)
	return b.checkEnum(n, p, key, b.scalar(n, p, key, raw))
}

func (b *builder) object(n *Node, p path) outcome {
	obj := orderedmap.New[string, any]()
	found := false
	for _, prop := range n.Properties {
		cp := p.Field(prop.Name)
		mark := len(b.issues)
		out := b.build(prop.Node, cp)
		if !out.found {
			// An absent subtree reports itself at most once, below.
			b.issues = b.issues[:mark]
		}
		found = found || out.found
		if out.present {
			obj.Set(prop.Name, out.value)
			continue
		}
		if !out.found && n.IsRequired(prop.Name) {
			b.report(cp, cp.Key(), CodeRequired, "", nil)
		}
	}
	return outcome{value: obj, present: obj.Len() > 0, found: found}
}

// freeForm collects the variables directly below p when the object declares no
// properties. Property names are the lower-cased key remainders.
func (b *builder) freeForm(p path) outcome {
	obj := orderedmap.New[string, any]()
	under := p.Under()
	for _, key := range b.env.KeysUnder(under) {
		v, _ := b.env.Lookup(key)
		name := strings.ToLower(strings.TrimPrefix(key, under))
		b.log.Debug("free-form property", "path", p.Dotted(), "key", key, "name", name)
		obj.Set(name, v)
	}
	return outcome{value: obj, present: obj.Len() > 0, found: obj.Len() > 0}
}

// array probes path_0, path_1, ... and stops at the first index with no
// variable under it, so a gap truncates the array.
func (b *builder) array(n *Node, p path) outcome {
	items := n.Items
	if items == nil {
		items = untyped
	}
	var elems []any
	found := false
	for i := 0; ; i++ {
		ep := p.Index(i)
		mark := len(b.issues)
		out := b.build(items, ep)
		if !out.found {
			// A missing element must not report its own required children.
			b.issues = b.issues[:mark]
			b.log.Debug("array probe stopped", "path", p.Dotted(), "index", i)
			break
		}
		found = true
		if out.present {
			elems = append(elems, out.value)
		}
	}
	if !found && items.Kind.IsScalar() {
		if key, raw, ok := b.env.lookup(p); ok {
			return b.split(items, p, key, raw)
		}
	}
	if len(elems) == 0 {
		return outcome{found: found}
	}
	return outcome{value: elems, present: true, found: true}
}

// split turns a single delimited variable into array elements.
func (b *builder) split(items *Node, p path, key, raw string) outcome {
	b.log.Debug("splitting delimited array", "path", p.Dotted(), "key", key, "raw", raw)
	pieces := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	elems := make([]any, 0, len(pieces))
	for i, piece := range pieces {
		out := b.leaf(items, p.Index(i), key, piece)
		if out.present {
			elems = append(elems, out.value)
		}
	}
	return outcome{value: elems, present: true, found: true, raw: raw}
}

func (b *builder) report(p path, key, code, value string, params map[string]any) {
	iss := newIssue(p, key, code, value, params)
	b.log.Debug("issue", "path", p.Dotted(), "key", key, "code", code, "value", value)
	b.issues = append(b.issues, iss)
}
