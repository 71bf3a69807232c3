// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines symbolite expression trees.
//
// A tree is built from Node values: literals and containers, named leaves
// of a kind (symbol, real, vector, boolean), callables and the expressions
// applying them, namespaces grouping named attributes, and blocks of
// assignments. Trees are immutable once built.
package expr

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Node is the interface every element of an expression tree implements.
type Node interface {
	// Key returns the canonical structural encoding of the node.
	// Two nodes are equal exactly when their keys are equal.
	Key() string
	// String returns the human-readable source rendering.
	String() string
	isNode()
}

// Equal reports whether two nodes are structurally equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}

// Hash returns a structural hash consistent with Equal.
func Hash(n Node) uint64 {
	if n == nil {
		return 0
	}
	return xxh3.HashString(n.Key())
}

// Lit is an opaque literal value. Integers are normalized to int64 and
// floats to float64 by From.
type Lit struct {
	V any
}

func (l Lit) Key() string {
	switch v := l.V.(type) {
	case nil:
		return "lit:nil"
	case string:
		return "lit:string:" + strconv.Quote(v)
	case bool, int64, float64:
		return fmt.Sprintf("lit:%T:%v", v, v)
	}
	return "lit:" + strconv.Quote(fmt.Sprintf("%T:%#v", l.V, l.V))
}

func (l Lit) String() string { return FormatLiteral(l.V) }
func (Lit) isNode()          {}

// Tuple is an ordered, fixed collection of nodes.
type Tuple []Node

func (t Tuple) Key() string { return "tuple(" + joinKeys(t) + ")" }
func (t Tuple) String() string {
	if len(t) == 1 {
		return "(" + t[0].String() + ",)"
	}
	return "(" + joinStrings(t) + ")"
}
func (Tuple) isNode() {}

// List is an ordered collection of nodes.
type List []Node

func (l List) Key() string    { return "list(" + joinKeys(l) + ")" }
func (l List) String() string { return "[" + joinStrings(l) + "]" }
func (List) isNode()          {}

// Item is a single Dict entry.
type Item struct {
	Key   string
	Value Node
}

// Dict is a string-keyed mapping kept sorted by key.
type Dict []Item

// NewDict builds a Dict from a map, sorting by key.
func NewDict(m map[string]Node) Dict {
	d := make(Dict, 0, len(m))
	for k, v := range m {
		d = append(d, Item{Key: k, Value: v})
	}
	sort.Slice(d, func(i, j int) bool { return d[i].Key < d[j].Key })
	return d
}

func (d Dict) Key() string {
	parts := make([]string, len(d))
	for i, it := range d {
		parts[i] = strconv.Quote(it.Key) + ":" + it.Value.Key()
	}
	return "dict(" + strings.Join(parts, ",") + ")"
}

func (d Dict) String() string {
	parts := make([]string, len(d))
	for i, it := range d {
		parts[i] = FormatLiteral(it.Key) + ": " + it.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (Dict) isNode() {}

// Ref is a dotted path ("real.cos") resolved against a backend at
// translation time. Plain strings are literals, not references.
type Ref string

func (r Ref) Key() string    { return "ref:" + strconv.Quote(string(r)) }
func (r Ref) String() string { return string(r) }
func (Ref) isNode()          {}

// Split returns the namespace and attribute name of the path.
func (r Ref) Split() (namespace, name string) {
	s := string(r)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

// From converts a Go value into a Node. Nodes are returned unchanged.
func From(v any) Node {
	switch x := v.(type) {
	case Node:
		return x
	case nil:
		return Lit{}
	case bool, string, int64, float64:
		return Lit{V: x}
	case int:
		return Lit{V: int64(x)}
	case int8:
		return Lit{V: int64(x)}
	case int16:
		return Lit{V: int64(x)}
	case int32:
		return Lit{V: int64(x)}
	case uint:
		return Lit{V: int64(x)}
	case uint8:
		return Lit{V: int64(x)}
	case uint16:
		return Lit{V: int64(x)}
	case uint32:
		return Lit{V: int64(x)}
	case uint64:
		return Lit{V: int64(x)}
	case float32:
		return Lit{V: float64(x)}
	case []any:
		t := make(Tuple, len(x))
		for i, e := range x {
			t[i] = From(e)
		}
		return t
	case []float64:
		t := make(Tuple, len(x))
		for i, e := range x {
			t[i] = Lit{V: e}
		}
		return t
	case map[string]any:
		m := make(map[string]Node, len(x))
		for k, e := range x {
			m[k] = From(e)
		}
		return NewDict(m)
	}
	return Lit{V: v}
}

// FormatLiteral renders a Go value the way it appears in emitted source.
func FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return "'" + strings.ReplaceAll(strings.ReplaceAll(x, `\`, `\\`), "'", `\'`) + "'"
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatLiteral(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".en") {
		s += ".0"
	}
	return s
}

func joinKeys(ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.Key()
	}
	return strings.Join(parts, ",")
}

func joinStrings(ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
