// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AnonymousPrefix starts the generated name of every anonymous leaf.
const AnonymousPrefix = "__anon_"

// Leaf is a named value of a kind. A leaf is free when it has neither a
// namespace nor an expression, a library constant when it has a namespace
// ("real.pi"), and derived when it carries the expression that produced it.
type Leaf struct {
	name      string
	namespace string
	kind      Kind
	expr      *Expression
	anonymous bool
}

// NewLeaf creates a free leaf. A dotted name ("real.pi") creates a library
// leaf in that namespace; an empty name creates an anonymous leaf.
func NewLeaf(kind Kind, name string) *Leaf {
	if name == "" {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		return &Leaf{name: AnonymousPrefix + id, kind: kind, anonymous: true}
	}
	ns, n := Ref(name).Split()
	return &Leaf{name: n, namespace: ns, kind: kind}
}

// NewDerived wraps an expression as a leaf of the given kind.
func NewDerived(kind Kind, e *Expression) *Leaf {
	return &Leaf{kind: kind, expr: e}
}

func (l *Leaf) Name() string            { return l.name }
func (l *Leaf) Namespace() string       { return l.namespace }
func (l *Leaf) Kind() Kind              { return l.kind }
func (l *Leaf) Expression() *Expression { return l.expr }
func (l *Leaf) IsAnonymous() bool       { return l.anonymous }
func (l *Leaf) IsDerived() bool         { return l.expr != nil }
func (l *Leaf) IsFree() bool            { return l.expr == nil && l.namespace == "" }
func (l *Leaf) leaf() *Leaf             { return l }
func (*Leaf) isNode()                   {}

// QualifiedName returns "namespace.name", or just the name outside a namespace.
func (l *Leaf) QualifiedName() string {
	if l.namespace == "" {
		return l.name
	}
	return l.namespace + "." + l.name
}

// Key identifies a free or library leaf by kind and qualified name, and a
// derived leaf by kind and expression. The display name of a derived leaf
// does not take part.
func (l *Leaf) Key() string {
	if l.expr != nil {
		return "leaf:" + l.kind.String() + ":=" + l.expr.Key()
	}
	return "leaf:" + l.kind.String() + ":" + strconv.Quote(l.QualifiedName())
}

func (l *Leaf) String() string {
	if l.expr != nil {
		return l.expr.String()
	}
	return l.QualifiedName()
}

// Rename returns a copy of the leaf carrying name.
func (l *Leaf) Rename(name string) *Leaf {
	c := *l
	c.name = name
	c.anonymous = false
	return &c
}

// withExpression returns a copy of a derived leaf over e.
func (l *Leaf) withExpression(e *Expression) *Leaf {
	c := *l
	c.expr = e
	return &c
}

type leafNode interface {
	Node
	leaf() *Leaf
}

// AsLeaf unwraps a leaf or one of its typed wrappers.
func AsLeaf(n Node) (*Leaf, bool) {
	ln, ok := n.(leafNode)
	if !ok {
		return nil, false
	}
	l := ln.leaf()
	return l, l != nil
}

// Symbol is a leaf of the untyped symbolic kind.
type Symbol struct{ *Leaf }

// Real is a leaf of the real-number kind.
type Real struct{ *Leaf }

// Vector is a leaf of the vector kind.
type Vector struct{ *Leaf }

// Boolean is a leaf of the boolean kind.
type Boolean struct{ *Leaf }

// NewSymbol creates a free symbol leaf.
func NewSymbol(name string) Symbol { return Symbol{NewLeaf(KindSymbol, name)} }

// NewReal creates a free real leaf.
func NewReal(name string) Real { return Real{NewLeaf(KindReal, name)} }

// NewVector creates a free vector leaf.
func NewVector(name string) Vector { return Vector{NewLeaf(KindVector, name)} }

// NewBoolean creates a free boolean leaf.
func NewBoolean(name string) Boolean { return Boolean{NewLeaf(KindBoolean, name)} }

// Wrap returns the typed wrapper matching the leaf's kind.
func Wrap(l *Leaf) Node {
	switch l.kind {
	case KindReal:
		return Real{l}
	case KindVector:
		return Vector{l}
	case KindBoolean:
		return Boolean{l}
	}
	return Symbol{l}
}

// Downcast narrows a derived symbol to another kind, keeping its expression.
// It is the only way to reinterpret a generic symbolic result, such as the
// element obtained by indexing.
func Downcast(n Node, kind Kind) (Node, error) {
	l, ok := AsLeaf(n)
	if !ok {
		return nil, errors.Errorf("cannot downcast %s: not a leaf", n)
	}
	if l.kind == kind {
		return Wrap(l), nil
	}
	if l.kind != KindSymbol || l.expr == nil {
		return nil, errors.Errorf("cannot downcast %s %s to %s: only derived symbols can be narrowed", l.kind, l, kind)
	}
	return Wrap(NewDerived(kind, l.expr)), nil
}
