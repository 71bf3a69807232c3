// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Attr is a named attribute of a Namespace.
type Attr struct {
	Name  string
	Value Node
}

// Namespace is an ordered group of named attributes, the unit in which
// related definitions are rendered, evaluated and stored.
type Namespace struct {
	name  string
	attrs []Attr
	index map[string]int
}

// NewNamespace creates an empty namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{name: name, index: make(map[string]int)}
}

func (ns *Namespace) Name() string { return ns.name }
func (ns *Namespace) Len() int     { return len(ns.attrs) }
func (*Namespace) isNode()         {}

// Attrs returns the attributes in binding order.
func (ns *Namespace) Attrs() []Attr {
	return append([]Attr(nil), ns.attrs...)
}

// Names returns the attribute names in binding order.
func (ns *Namespace) Names() []string {
	names := make([]string, len(ns.attrs))
	for i, a := range ns.attrs {
		names[i] = a.Name
	}
	return names
}

// Get returns the value bound to name.
func (ns *Namespace) Get(name string) (Node, bool) {
	i, ok := ns.index[name]
	if !ok {
		return nil, false
	}
	return ns.attrs[i].Value, true
}

// Bind binds v under attr and returns the bound node. A leaf outside any
// library namespace takes the attribute name; when it already carried a
// different explicit name a warning is logged and the attribute name wins.
// Rebinding an existing attribute replaces it in place.
func (ns *Namespace) Bind(attr string, v any) Node {
	node := From(v)
	if l, ok := AsLeaf(node); ok && l.namespace == "" {
		if l.name != "" && !l.anonymous && l.name != attr {
			Logger().WithFields(logrus.Fields{
				"attribute": attr,
				"name":      l.name,
				"kind":      l.kind.String(),
			}).Warnf("mismatched names in attribute %s: %s is named %s", attr, l.kind.ClassName(), l.name)
		}
		node = Wrap(l.Rename(attr))
	}
	ns.set(attr, node)
	return node
}

func (ns *Namespace) set(attr string, node Node) {
	if i, ok := ns.index[attr]; ok {
		ns.attrs[i].Value = node
		return
	}
	ns.index[attr] = len(ns.attrs)
	ns.attrs = append(ns.attrs, Attr{Name: attr, Value: node})
}

// Symbol declares a free symbol attribute.
func (ns *Namespace) Symbol(name string) Symbol { return ns.Bind(name, NewSymbol(name)).(Symbol) }

// Real declares a free real attribute.
func (ns *Namespace) Real(name string) Real { return ns.Bind(name, NewReal(name)).(Real) }

// Vector declares a free vector attribute.
func (ns *Namespace) Vector(name string) Vector { return ns.Bind(name, NewVector(name)).(Vector) }

// Boolean declares a free boolean attribute.
func (ns *Namespace) Boolean(name string) Boolean { return ns.Bind(name, NewBoolean(name)).(Boolean) }

func (ns *Namespace) Key() string {
	var sb strings.Builder
	sb.WriteString("ns:")
	sb.WriteString(strconv.Quote(ns.name))
	sb.WriteByte('{')
	for i, a := range ns.attrs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(a.Name))
		sb.WriteByte('=')
		sb.WriteString(a.Value.Key())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Definitions returns the attributes rendered in the definition section:
// every attribute that is not a free leaf.
func (ns *Namespace) Definitions() []Attr {
	var out []Attr
	for _, a := range ns.attrs {
		if l, ok := AsLeaf(a.Value); ok && l.IsFree() {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (ns *Namespace) String() string {
	var decls, defs []string
	for _, l := range FreeSymbols(ns) {
		decls = append(decls, Declaration(l))
	}
	for _, a := range ns.Definitions() {
		defs = append(defs, a.Name+" = "+a.Value.String())
	}
	return RenderNamespace(ns.name, decls, defs)
}

// Declaration renders the declaration of a free leaf ("x = Real()").
func Declaration(l *Leaf) string {
	return l.name + " = " + l.kind.ClassName() + "()"
}

// RenderNamespace lays out a namespace as a "# name" header, the free
// leaf declarations and the definitions, separated by blank lines.
func RenderNamespace(name string, decls, defs []string) string {
	sections := []string{"# " + name}
	if len(decls) > 0 {
		sections = append(sections, strings.Join(decls, "\n"))
	}
	if len(defs) > 0 {
		sections = append(sections, strings.Join(defs, "\n"))
	}
	return strings.Join(sections, "\n\n")
}
