// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package code is the source-emission backend. Translating through it yields
// Fragments, rendered text carrying the precedence of its top operator, and
// AsCode turns any node into source text.
package code

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Name identifies the backend.
const Name = "code"

// Fragment is a piece of rendered source.
type Fragment struct {
	Text string
	Prec int
}

func (f Fragment) String() string { return f.Text }

// Backend renders trees as source text.
type Backend struct {
	*backend.Module
}

// New builds the code backend over the current catalog.
func New() *Backend {
	m := backend.NewModule(Name)
	for _, c := range expr.Callables() {
		m.Set(c.Namespace(), c.Name(), renderer(c))
	}
	for _, l := range expr.Constants() {
		m.Set(l.Namespace(), l.Name(), Fragment{Text: l.QualifiedName(), Prec: expr.PrecAtom})
	}
	for _, k := range expr.Kinds() {
		m.Set(k.String(), k.ClassName(), backend.LeafFunc(func(name string) (any, error) {
			return Fragment{Text: name, Prec: expr.PrecAtom}, nil
		}))
	}
	m.SetAll(backend.Lang, map[string]any{
		backend.ToBool:  backend.LiteralFunc(literal),
		backend.ToInt:   backend.LiteralFunc(literal),
		backend.ToFloat: backend.LiteralFunc(literal),
		backend.ToTuple: backend.LiteralFunc(func(v any) (any, error) {
			items := texts(v.([]any))
			if len(items) == 1 {
				return Fragment{Text: "(" + items[0] + ",)", Prec: expr.PrecAtom}, nil
			}
			return Fragment{Text: "(" + strings.Join(items, ", ") + ")", Prec: expr.PrecAtom}, nil
		}),
		backend.ToList: backend.LiteralFunc(func(v any) (any, error) {
			return Fragment{Text: "[" + strings.Join(texts(v.([]any)), ", ") + "]", Prec: expr.PrecAtom}, nil
		}),
		backend.ToDict: backend.LiteralFunc(func(v any) (any, error) {
			items := v.([]backend.Item)
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i] = expr.FormatLiteral(it.Key) + ": " + text(it.Value)
			}
			return Fragment{Text: "{" + strings.Join(parts, ", ") + "}", Prec: expr.PrecAtom}, nil
		}),
		backend.Assign: backend.AssignFunc(func(a *expr.Assign, be backend.Backend) (any, error) {
			rhs, err := eval.Translate(a.Rhs(), be)
			if err != nil {
				return nil, err
			}
			return Fragment{Text: a.Lhs().Name() + " = " + text(rhs), Prec: expr.PrecAtom}, nil
		}),
		backend.Block: backend.BlockFunc(func(b *expr.Block, be backend.Backend) (any, error) {
			src, err := renderBlock(b, be)
			if err != nil {
				return nil, err
			}
			return Fragment{Text: src, Prec: expr.PrecAtom}, nil
		}),
	})
	return &Backend{Module: m}
}

// LookupUser renders user functions as calls by their bare name.
func (b *Backend) LookupUser(fn *expr.UserFunction) (any, bool) {
	return renderer(fn), true
}

// Unwrap turns fragments, and containers of fragments, into strings.
func (b *Backend) Unwrap(v any) any {
	switch x := v.(type) {
	case Fragment:
		return x.Text
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = b.Unwrap(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = b.Unwrap(e)
		}
		return out
	}
	return v
}

var shared = New()

// Default returns a process-wide code backend.
func Default() *Backend { return shared }

// AsCode renders a node as source text. Namespaces render as a header,
// the declarations of their free leaves and their definitions.
func AsCode(n expr.Node) (string, error) {
	be := Default()
	if ns, ok := n.(*expr.Namespace); ok {
		return renderNamespace(ns, be)
	}
	v, err := eval.Translate(n, be)
	if err != nil {
		return "", err
	}
	return text(v), nil
}

// AsBlockCode renders a block as a function definition.
func AsBlockCode(b *expr.Block) (string, error) {
	return renderBlock(b, Default())
}

func renderNamespace(ns *expr.Namespace, be backend.Backend) (string, error) {
	var decls, defs []string
	for _, l := range expr.FreeSymbols(ns) {
		decls = append(decls, expr.Declaration(l))
	}
	for _, a := range ns.Definitions() {
		v, err := eval.Translate(a.Value, be)
		if err != nil {
			return "", errors.Wrapf(err, "rendering %s", a.Name)
		}
		defs = append(defs, a.Name+" = "+text(v))
	}
	return expr.RenderNamespace(ns.Name(), decls, defs), nil
}

func renderBlock(b *expr.Block, be backend.Backend) (string, error) {
	body := make([]string, 0, len(b.Lines()))
	for _, line := range b.Lines() {
		v, err := eval.Translate(line, be)
		if err != nil {
			return "", err
		}
		body = append(body, text(v))
	}
	return expr.RenderBlock(b.Name(), b.Inputs(), b.Outputs(), body), nil
}

func renderer(c expr.Callable) backend.Func {
	bare := false
	if op, ok := c.(*expr.Operator); ok {
		bare = op.Bare()
	}
	return func(args []any, kwargs map[string]any) (any, error) {
		ops := make([]expr.Operand, len(args))
		for i, a := range args {
			ops[i] = operand(a)
			if s, ok := a.(string); ok && bare && i == 1 {
				ops[i] = expr.Operand{Text: s, Prec: expr.PrecAtom}
			}
		}
		keys := make([]string, 0, len(kwargs))
		for k := range kwargs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kws := make([]string, len(keys))
		for i, k := range keys {
			kws[i] = k + "=" + text(kwargs[k])
		}
		o := expr.RenderCall(c, ops, kws)
		return Fragment{Text: o.Text, Prec: o.Prec}, nil
	}
}

func literal(v any) (any, error) {
	return Fragment{Text: expr.FormatLiteral(v), Prec: expr.LiteralPrecedence(v)}, nil
}

func operand(v any) expr.Operand {
	if f, ok := v.(Fragment); ok {
		return expr.Operand{Text: f.Text, Prec: f.Prec}
	}
	return expr.Operand{Text: text(v), Prec: expr.LiteralPrecedence(v)}
}

func text(v any) string {
	switch x := v.(type) {
	case Fragment:
		return x.Text
	case string:
		return expr.FormatLiteral(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = expr.FormatLiteral(k) + ": " + text(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		return "(" + strings.Join(texts(x), ", ") + ")"
	case fmt.Stringer:
		return x.String()
	}
	return expr.FormatLiteral(v)
}

func texts(vs []any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = text(v)
	}
	return out
}
