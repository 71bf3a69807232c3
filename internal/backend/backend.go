// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package backend defines how expression trees meet concrete
// implementations. A backend is a table of implementations keyed by
// catalog namespace and name ("real", "cos"); translation looks every
// callable, constant and leaf constructor up in it.
package backend

import (
	"fmt"
	"sort"

	"github.com/dyscolab/symbolite/internal/expr"
)

// Backend resolves catalog entries to implementations.
type Backend interface {
	// Name identifies the backend; user-function implementations are
	// registered under it.
	Name() string
	// Lookup returns the implementation of namespace.name. The value may be
	// Unsupported.
	Lookup(namespace, name string) (any, bool)
}

// UserFuncResolver is implemented by backends that handle user functions
// themselves instead of consulting the registry.
type UserFuncResolver interface {
	LookupUser(fn *expr.UserFunction) (any, bool)
}

// Unwrapper is implemented by backends whose translated values need a
// final conversion before they are handed to callers.
type Unwrapper interface {
	Unwrap(v any) any
}

type unsupported struct{}

func (unsupported) String() string { return "Unsupported" }

// Unsupported marks a catalog entry a backend knowingly does not implement.
// Reaching it during translation is an error.
var Unsupported any = unsupported{}

// IsUnsupported reports whether v is the Unsupported marker.
func IsUnsupported(v any) bool {
	_, ok := v.(unsupported)
	return ok
}

// Func implements a callable over translated arguments.
type Func func(args []any, kwargs map[string]any) (any, error)

// LeafFunc materializes a free leaf of a kind from its name. It is stored
// under the kind's namespace and class name ("real", "Real").
type LeafFunc func(name string) (any, error)

// LiteralFunc converts a translated literal or container ("lang", "to_int").
type LiteralFunc func(v any) (any, error)

// AssignFunc translates an assignment ("lang", "Assign").
type AssignFunc func(a *expr.Assign, be Backend) (any, error)

// BlockFunc translates a block ("lang", "Block").
type BlockFunc func(b *expr.Block, be Backend) (any, error)

// Entry names of the "lang" namespace.
const (
	Lang    = "lang"
	Assign  = "Assign"
	Block   = "Block"
	ToBool  = "to_bool"
	ToInt   = "to_int"
	ToFloat = "to_float"
	ToTuple = "to_tuple"
	ToList  = "to_list"
	ToDict  = "to_dict"
)

// Item is an entry of a translated dict literal passed to the to_dict hook.
type Item struct {
	Key   string
	Value any
}

// UnsupportedError reports an entry marked Unsupported.
type UnsupportedError struct {
	Name    string
	Backend string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported in module %s", e.Name, e.Backend)
}

// NotFoundError reports an entry the backend does not define at all.
type NotFoundError struct {
	Name    string
	Backend string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %s has no attribute %s", e.Backend, e.Name)
}

// MissingImplError reports a user function without an implementation for
// the backend and without a default.
type MissingImplError struct {
	Function string
	Backend  string
}

func (e *MissingImplError) Error() string {
	return fmt.Sprintf("no implementation found for %s and no default implementation provided for function %s", e.Backend, e.Function)
}

// Module is a Backend backed by an in-memory table.
type Module struct {
	name    string
	entries map[string]map[string]any
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{name: name, entries: make(map[string]map[string]any)}
}

func (m *Module) Name() string { return m.name }

// Set stores the implementation of namespace.name.
func (m *Module) Set(namespace, name string, v any) *Module {
	ns, ok := m.entries[namespace]
	if !ok {
		ns = make(map[string]any)
		m.entries[namespace] = ns
	}
	ns[name] = v
	return m
}

// SetAll stores every entry of impls under namespace.
func (m *Module) SetAll(namespace string, impls map[string]any) *Module {
	for name, v := range impls {
		m.Set(namespace, name, v)
	}
	return m
}

// MarkUnsupported stores Unsupported for every name not yet defined.
func (m *Module) MarkUnsupported(namespace string, names ...string) *Module {
	for _, name := range names {
		if _, ok := m.Lookup(namespace, name); !ok {
			m.Set(namespace, name, Unsupported)
		}
	}
	return m
}

// Lookup implements Backend.
func (m *Module) Lookup(namespace, name string) (any, bool) {
	v, ok := m.entries[namespace][name]
	return v, ok
}

// Names lists the names defined under namespace.
func (m *Module) Names(namespace string) []string {
	var names []string
	for name := range m.entries[namespace] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Missing lists the catalog entries the backend neither implements nor
// marks Unsupported.
func Missing(be Backend) []string {
	var out []string
	for _, c := range expr.Callables() {
		if _, ok := be.Lookup(c.Namespace(), c.Name()); !ok {
			out = append(out, c.QualifiedName())
		}
	}
	for _, l := range expr.Constants() {
		if _, ok := be.Lookup(l.Namespace(), l.Name()); !ok {
			out = append(out, l.QualifiedName())
		}
	}
	return out
}

// AsFunc accepts a Func or a function literal of the same shape.
func AsFunc(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, true
	case func(args []any, kwargs map[string]any) (any, error):
		return f, true
	}
	return nil, false
}
