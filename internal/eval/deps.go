package eval

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Set is a set of comparable items.
type Set[E comparable] map[E]struct{}

// Add inserts e.
func (s Set[E]) Add(e E) { s[e] = struct{}{} }

// Contains reports whether e is in the set.
func (s Set[E]) Contains(e E) bool {
	_, ok := s[e]
	return ok
}

// Digraph associates each node with the set of nodes it depends on.
type Digraph[E cmp.Ordered] map[E]Set[E]

// StripLeafnodes removes and returns, sorted, every node whose dependencies
// are all gone from the graph. Dependencies that were never nodes of the
// graph count as gone.
func (d Digraph[E]) StripLeafnodes() []E {
	var leaves []E
	for k, deps := range d {
		leaf := true
		for dep := range deps {
			if _, ok := d[dep]; ok {
				leaf = false
				break
			}
		}
		if leaf {
			leaves = append(leaves, k)
		}
	}
	for _, k := range leaves {
		delete(d, k)
	}
	slices.Sort(leaves)
	return leaves
}

// CycleError reports the items left over when no further item can be
// ordered, together with their unresolved dependencies.
type CycleError struct {
	Remaining map[string][]string
}

func (e *CycleError) Error() string {
	keys := make([]string, 0, len(e.Remaining))
	for k := range e.Remaining {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s -> {%s}", k, strings.Join(e.Remaining[k], ", "))
	}
	return "cyclic dependencies exist among these items: " + strings.Join(parts, "; ")
}

// rename reports the same cycle with every item passed through name.
func (e *CycleError) rename(name func(string) string) *CycleError {
	rem := make(map[string][]string, len(e.Remaining))
	for k, deps := range e.Remaining {
		ds := make([]string, len(deps))
		for i, d := range deps {
			ds[i] = name(d)
		}
		slices.Sort(ds)
		rem[name(k)] = ds
	}
	return &CycleError{Remaining: rem}
}

// SolveDependencies orders items so that every item comes after the items
// it depends on. Each wave holds the items whose dependencies are satisfied
// by earlier waves, sorted. Dependencies outside the key set are ignored.
func SolveDependencies(deps map[string]Set[string]) ([][]string, error) {
	d := make(Digraph[string], len(deps))
	for k, v := range deps {
		s := make(Set[string], len(v))
		for dep := range v {
			s.Add(dep)
		}
		d[k] = s
	}
	var waves [][]string
	for leaves := d.StripLeafnodes(); len(leaves) > 0; leaves = d.StripLeafnodes() {
		waves = append(waves, leaves)
	}
	if len(d) > 0 {
		rem := make(map[string][]string, len(d))
		for k, v := range d {
			var ds []string
			for dep := range v {
				if _, ok := d[dep]; ok {
					ds = append(ds, dep)
				}
			}
			slices.Sort(ds)
			rem[k] = ds
		}
		return nil, &CycleError{Remaining: rem}
	}
	return waves, nil
}

// Binding pairs a free leaf with the value defining it.
type Binding struct {
	Key   *expr.Leaf
	Value expr.Node
}

// Content is a group of bindings that may refer to each other's keys.
type Content []Binding

func (c Content) index() (map[string]Binding, error) {
	byKey := make(map[string]Binding, len(c))
	for _, b := range c {
		if b.Key == nil || !b.Key.IsFree() {
			return nil, errors.Errorf("binding key %v is not a free leaf", b.Key)
		}
		if _, dup := byKey[b.Key.Key()]; dup {
			return nil, errors.Errorf("duplicate binding for %s", b.Key.Name())
		}
		byKey[b.Key.Key()] = b
	}
	return byKey, nil
}

// ComputeDependencies maps each binding key to the keys its value refers
// to. A binding whose value is just its own key has no dependencies.
func ComputeDependencies(c Content) map[string]Set[string] {
	keys := make(Set[string], len(c))
	for _, b := range c {
		keys.Add(b.Key.Key())
	}
	out := make(map[string]Set[string], len(c))
	for _, b := range c {
		k := b.Key.Key()
		deps := make(Set[string])
		counts := expr.CountNamed(b.Value)
		if len(counts) == 1 && counts[0].N == 1 && counts[0].Node.Key() == k {
			out[k] = deps
			continue
		}
		for _, cnt := range counts {
			if l, ok := expr.AsLeaf(cnt.Node); ok && l.IsFree() && keys.Contains(l.Key()) {
				deps.Add(l.Key())
			}
		}
		out[k] = deps
	}
	return out
}

func (c Content) order() (map[string]Binding, [][]string, error) {
	byKey, err := c.index()
	if err != nil {
		return nil, nil, err
	}
	waves, err := SolveDependencies(ComputeDependencies(c))
	var ce *CycleError
	if errors.As(err, &ce) {
		return nil, nil, ce.rename(func(k string) string { return byKey[k].Key.Name() })
	}
	if err != nil {
		return nil, nil, err
	}
	return byKey, waves, nil
}

// SubstituteContent resolves every binding into a tree free of the other
// keys, visiting bindings in dependency order. Results are keyed by name.
func SubstituteContent(c Content) (map[string]expr.Node, error) {
	byKey, waves, err := c.order()
	if err != nil {
		return nil, err
	}
	out := make(map[string]expr.Node, len(c))
	m := expr.NewMapping()
	for _, wave := range waves {
		for _, k := range wave {
			b := byKey[k]
			v := expr.Substitute(b.Value, m)
			out[b.Key.Name()] = v
			m.Set(b.Key, v)
		}
	}
	return out, nil
}

// EvalContent evaluates every binding through be in dependency order; each
// value sees the already-evaluated results of the keys it refers to.
// Results are keyed by name.
func EvalContent(c Content, be backend.Backend) (map[string]any, error) {
	return New(be).EvalContent(c)
}

// EvalContent is the Evaluator form of EvalContent.
func (ev *Evaluator) EvalContent(c Content) (map[string]any, error) {
	byKey, waves, err := c.order()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(c))
	m := expr.NewMapping()
	for _, keys := range waves {
		wave := make([]Binding, len(keys))
		for i, k := range keys {
			wave[i] = byKey[k]
		}
		results, err := ev.evalWave(wave, m)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			out[r.binding.Key.Name()] = r.value
			m.Set(r.binding.Key, expr.Lit{V: r.value})
		}
	}
	return out, nil
}

// NamespaceContent turns the attributes of ns into bindings after applying
// bindings: an attribute holding a free leaf is keyed by that leaf, any
// other attribute by a free leaf of its name and kind.
func NamespaceContent(ns *expr.Namespace, bindings *expr.Mapping) Content {
	var c Content
	for _, a := range ns.Attrs() {
		var key *expr.Leaf
		kind := expr.KindSymbol
		if l, ok := expr.AsLeaf(a.Value); ok {
			if l.IsFree() {
				key = l
			}
			kind = l.Kind()
		}
		if key == nil {
			key = expr.NewLeaf(kind, a.Name)
		}
		c = append(c, Binding{Key: key, Value: expr.Substitute(a.Value, bindings)})
	}
	return c
}

// EvalNamespace evaluates every attribute of ns after substituting bindings.
func EvalNamespace(ns *expr.Namespace, bindings *expr.Mapping, be backend.Backend) (map[string]any, error) {
	return New(be).EvalContent(NamespaceContent(ns, bindings))
}
