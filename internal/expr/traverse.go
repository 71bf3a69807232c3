package expr

// Named is a node carrying a name: a leaf or a callable.
type Named interface {
	Node
	Name() string
	Namespace() string
}

// YieldNamed returns every named element of the tree in depth-first order:
// free and library leaves, and the callable heading each expression before
// its arguments. Derived leaves are looked through. Anonymous leaves are
// skipped unless includeAnonymous is set. Repeated elements repeat.
func YieldNamed(n Node, includeAnonymous bool) []Named {
	var out []Named
	walkNamed(n, includeAnonymous, func(v Named) { out = append(out, v) })
	return out
}

func walkNamed(n Node, anon bool, yield func(Named)) {
	if n == nil {
		return
	}
	if l, ok := AsLeaf(n); ok {
		if l.expr != nil {
			walkNamed(l.expr, anon, yield)
		} else if anon || !l.anonymous {
			yield(l)
		}
		return
	}
	switch x := n.(type) {
	case *Expression:
		yield(x.fn)
		for _, a := range x.args {
			walkNamed(a, anon, yield)
		}
		for _, kw := range x.kwargs {
			walkNamed(kw.Value, anon, yield)
		}
	case Callable:
		yield(x)
	case Tuple:
		for _, e := range x {
			walkNamed(e, anon, yield)
		}
	case List:
		for _, e := range x {
			walkNamed(e, anon, yield)
		}
	case Dict:
		for _, it := range x {
			walkNamed(it.Value, anon, yield)
		}
	case *Namespace:
		for _, a := range x.attrs {
			walkNamed(a.Value, anon, yield)
		}
	case *Assign:
		walkNamed(x.lhs, anon, yield)
		walkNamed(x.rhs, anon, yield)
	case *Block:
		for _, l := range x.inputs {
			walkNamed(l, anon, yield)
		}
		for _, a := range x.lines {
			walkNamed(a, anon, yield)
		}
		for _, l := range x.outputs {
			walkNamed(l, anon, yield)
		}
	}
}

// Count pairs a named element with its number of occurrences.
type Count struct {
	Node Node
	N    int
}

// CountNamed counts the named elements of the tree, anonymous leaves
// included, in first-seen order. A tree without named elements counts as
// one occurrence of itself.
func CountNamed(n Node) []Count {
	var out []Count
	pos := make(map[string]int)
	walkNamed(n, true, func(v Named) {
		k := v.Key()
		if i, ok := pos[k]; ok {
			out[i].N++
			return
		}
		pos[k] = len(out)
		out = append(out, Count{Node: v, N: 1})
	})
	if len(out) == 0 {
		return []Count{{Node: n, N: 1}}
	}
	return out
}

// FreeSymbols returns the distinct free leaves of the tree in first-seen order.
func FreeSymbols(n Node) []*Leaf {
	var out []*Leaf
	seen := make(map[string]bool)
	walkNamed(n, true, func(v Named) {
		l, ok := v.(*Leaf)
		if !ok || !l.IsFree() || seen[l.Key()] {
			return
		}
		seen[l.Key()] = true
		out = append(out, l)
	})
	return out
}

// SymbolNames returns the names of the non-anonymous named elements that
// belong to namespace. The empty namespace selects user-level names.
func SymbolNames(n Node, namespace string) map[string]struct{} {
	out := make(map[string]struct{})
	walkNamed(n, false, func(v Named) {
		if v.Namespace() == namespace {
			out[v.Name()] = struct{}{}
		}
	})
	return out
}

// SymbolNamespaces returns the namespaces of every named element.
func SymbolNamespaces(n Node) map[string]struct{} {
	out := make(map[string]struct{})
	walkNamed(n, true, func(v Named) {
		out[v.Namespace()] = struct{}{}
	})
	return out
}
