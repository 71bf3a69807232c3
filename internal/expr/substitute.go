package expr

// Mapping is a set of replacements keyed by structural equality.
type Mapping struct {
	m map[string]Node
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{m: make(map[string]Node)}
}

// Set maps every node equal to from onto to.
func (m *Mapping) Set(from Node, to any) *Mapping {
	m.m[from.Key()] = From(to)
	return m
}

// Get returns the replacement for n.
func (m *Mapping) Get(n Node) (Node, bool) {
	if m == nil {
		return nil, false
	}
	r, ok := m.m[n.Key()]
	return r, ok
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.m)
}

// BindNames maps the free leaves of n whose names appear in values.
func BindNames(n Node, values map[string]any) *Mapping {
	m := NewMapping()
	for _, l := range FreeSymbols(n) {
		if v, ok := values[l.name]; ok {
			m.Set(l, v)
		}
	}
	return m
}

// Substitute replaces every node of the tree equal to a key of m. It is a
// single pass: replacements are not themselves searched. Containers are
// rebuilt only where something changed, so substituting an empty mapping
// returns a structurally equal tree.
func Substitute(n Node, m *Mapping) Node {
	if n == nil || m.Len() == 0 {
		return n
	}
	out, _ := substitute(n, m)
	return out
}

// substitute reports whether anything was replaced.
func substitute(n Node, m *Mapping) (Node, bool) {
	if r, ok := m.Get(n); ok {
		return r, true
	}
	if l, ok := AsLeaf(n); ok {
		if l.expr == nil {
			return n, false
		}
		e, changed := substituteExpression(l.expr, m)
		if !changed {
			return n, false
		}
		return Wrap(l.withExpression(e)), true
	}
	switch x := n.(type) {
	case *Expression:
		return substituteExpression(x, m)
	case Tuple:
		out, changed := substituteAll(x, m)
		return Tuple(out), changed
	case List:
		out, changed := substituteAll(x, m)
		return List(out), changed
	case Dict:
		d := make(Dict, len(x))
		changed := false
		for i, it := range x {
			v, c := substitute(it.Value, m)
			d[i] = Item{Key: it.Key, Value: v}
			changed = changed || c
		}
		return d, changed
	case *Namespace:
		out := NewNamespace(x.name)
		changed := false
		for _, a := range x.attrs {
			v, c := substitute(a.Value, m)
			out.set(a.Name, v)
			changed = changed || c
		}
		return out, changed
	case *Assign:
		rhs, changed := substitute(x.rhs, m)
		return &Assign{lhs: x.lhs, rhs: rhs}, changed
	case *Block:
		// A rewrite that no longer validates leaves the block as it was.
		b, changed, _ := x.substitute(m)
		return b, changed
	}
	return n, false
}

func substituteAll(ns []Node, m *Mapping) ([]Node, bool) {
	out := make([]Node, len(ns))
	changed := false
	for i, e := range ns {
		var c bool
		out[i], c = substitute(e, m)
		changed = changed || c
	}
	return out, changed
}

func substituteExpression(e *Expression, m *Mapping) (*Expression, bool) {
	changed := false
	fn := e.fn
	if r, ok := m.Get(fn); ok {
		if c, ok := r.(Callable); ok {
			fn, changed = c, true
		}
	}
	args, c := substituteAll(e.args, m)
	changed = changed || c
	var kwargs []KwArg
	if len(e.kwargs) > 0 {
		kwargs = make([]KwArg, len(e.kwargs))
		for i, kw := range e.kwargs {
			v, c := substitute(kw.Value, m)
			kwargs[i] = KwArg{Name: kw.Name, Value: v}
			changed = changed || c
		}
	}
	if !changed {
		return e, false
	}
	return NewExpression(fn, args, kwargs), true
}
