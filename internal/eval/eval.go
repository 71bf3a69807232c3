// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval translates expression trees through a backend, orders groups
// of interdependent definitions and compiles blocks into callables.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/expr"
)

// CallError annotates a failure raised by an implementation with the call
// that raised it. Unwrap returns the original error.
type CallError struct {
	Func   string
	Args   []any
	Kwargs map[string]any
	Err    error
}

func (e *CallError) Error() string {
	parts := make([]string, 0, len(e.Args)+len(e.Kwargs))
	for _, a := range e.Args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	keys := make([]string, 0, len(e.Kwargs))
	for k := range e.Kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Kwargs[k]))
	}
	return fmt.Sprintf("while evaluating %s(%s): %v", e.Func, strings.Join(parts, ", "), e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
func (e *CallError) Cause() error  { return e.Err }

// Evaluator translates trees through one backend.
type Evaluator struct {
	backend  backend.Backend
	registry *expr.Registry
	log      logrus.FieldLogger
	workers  int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRegistry sets the registry user-function implementations come from.
func WithRegistry(r *expr.Registry) Option {
	return func(ev *Evaluator) { ev.registry = r }
}

// WithLogger sets the logger for translation diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(ev *Evaluator) { ev.log = l }
}

// New creates an Evaluator over be.
func New(be backend.Backend, opts ...Option) *Evaluator {
	ev := &Evaluator{
		backend:  be,
		registry: expr.DefaultRegistry,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Backend returns the backend the evaluator translates through.
func (ev *Evaluator) Backend() backend.Backend { return ev.backend }

// Translate converts a tree into the backend's representation.
func Translate(n expr.Node, be backend.Backend) (any, error) {
	return New(be).Translate(n)
}

// Evaluate translates n and applies the backend's final unwrapping, if any.
func Evaluate(n expr.Node, be backend.Backend) (any, error) {
	return New(be).Evaluate(n)
}

// Evaluate translates n and applies the backend's final unwrapping, if any.
func (ev *Evaluator) Evaluate(n expr.Node) (any, error) {
	v, err := ev.Translate(n)
	if err != nil {
		return nil, err
	}
	if u, ok := ev.backend.(backend.Unwrapper); ok {
		return u.Unwrap(v), nil
	}
	return v, nil
}

// Translate dispatches on the node type:
//   - literals pass through the backend's lang.to_* hooks when defined;
//   - free leaves are built by the kind's leaf constructor, library leaves
//     and references are looked up, derived leaves translate their expression;
//   - expressions resolve their callable and apply it to translated arguments;
//   - namespaces translate every attribute into a map;
//   - assignments and blocks go to lang.Assign and lang.Block.
func (ev *Evaluator) Translate(n expr.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	if l, ok := expr.AsLeaf(n); ok {
		return ev.leaf(l)
	}
	switch x := n.(type) {
	case expr.Lit:
		return ev.literal(x.V)
	case expr.Ref:
		ns, name := x.Split()
		return ev.resolve(ns, name)
	case expr.Tuple:
		items, err := ev.translateAll(x)
		if err != nil {
			return nil, err
		}
		return ev.hook(backend.ToTuple, items)
	case expr.List:
		items, err := ev.translateAll(x)
		if err != nil {
			return nil, err
		}
		return ev.hook(backend.ToList, items)
	case expr.Dict:
		return ev.dict(x)
	case *expr.Expression:
		return ev.call(x)
	case *expr.UserFunction:
		return ev.userImpl(x)
	case expr.Callable:
		return ev.resolve(x.Namespace(), x.Name())
	case *expr.Namespace:
		out := make(map[string]any, x.Len())
		for _, a := range x.Attrs() {
			v, err := ev.Translate(a.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "attribute %s", a.Name)
			}
			out[a.Name] = v
		}
		return out, nil
	case *expr.Assign:
		impl, err := ev.resolve(backend.Lang, backend.Assign)
		if err != nil {
			return nil, err
		}
		f, ok := impl.(backend.AssignFunc)
		if !ok {
			return nil, errors.Errorf("lang.Assign in module %s has type %T", ev.backend.Name(), impl)
		}
		return f(x, ev.backend)
	case *expr.Block:
		impl, err := ev.resolve(backend.Lang, backend.Block)
		if err != nil {
			return nil, err
		}
		f, ok := impl.(backend.BlockFunc)
		if !ok {
			return nil, errors.Errorf("lang.Block in module %s has type %T", ev.backend.Name(), impl)
		}
		return f(x, ev.backend)
	}
	return nil, errors.Errorf("cannot translate %T", n)
}

func (ev *Evaluator) translateAll(ns []expr.Node) ([]any, error) {
	out := make([]any, len(ns))
	for i, n := range ns {
		v, err := ev.Translate(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (ev *Evaluator) dict(d expr.Dict) (any, error) {
	items := make([]backend.Item, len(d))
	for i, it := range d {
		v, err := ev.Translate(it.Value)
		if err != nil {
			return nil, err
		}
		items[i] = backend.Item{Key: it.Key, Value: v}
	}
	if impl, ok := ev.backend.Lookup(backend.Lang, backend.ToDict); ok && !backend.IsUnsupported(impl) {
		return callHook(backend.ToDict, impl, items)
	}
	out := make(map[string]any, len(items))
	for _, it := range items {
		out[it.Key] = it.Value
	}
	return out, nil
}

func (ev *Evaluator) literal(v any) (any, error) {
	switch v.(type) {
	case bool:
		return ev.hook(backend.ToBool, v)
	case int64:
		return ev.hook(backend.ToInt, v)
	case float64:
		return ev.hook(backend.ToFloat, v)
	}
	return v, nil
}

// hook applies lang.<name> to v when the backend defines it.
func (ev *Evaluator) hook(name string, v any) (any, error) {
	impl, ok := ev.backend.Lookup(backend.Lang, name)
	if !ok || backend.IsUnsupported(impl) {
		return v, nil
	}
	return callHook(name, impl, v)
}

func callHook(name string, impl, v any) (any, error) {
	switch f := impl.(type) {
	case backend.LiteralFunc:
		return f(v)
	case func(any) (any, error):
		return f(v)
	}
	return nil, errors.Errorf("lang.%s has type %T", name, impl)
}

func (ev *Evaluator) resolve(namespace, name string) (any, error) {
	qualified := name
	if namespace != "" {
		qualified = namespace + "." + name
	}
	v, ok := ev.backend.Lookup(namespace, name)
	if !ok {
		return nil, &backend.NotFoundError{Name: qualified, Backend: ev.backend.Name()}
	}
	if backend.IsUnsupported(v) {
		return nil, &backend.UnsupportedError{Name: qualified, Backend: ev.backend.Name()}
	}
	return v, nil
}

func (ev *Evaluator) leaf(l *expr.Leaf) (any, error) {
	if l.IsDerived() {
		return ev.Translate(l.Expression())
	}
	if l.Namespace() != "" {
		return ev.resolve(l.Namespace(), l.Name())
	}
	impl, err := ev.resolve(l.Kind().String(), l.Kind().ClassName())
	if err != nil {
		return nil, err
	}
	switch f := impl.(type) {
	case backend.LeafFunc:
		return f(l.Name())
	case func(string) (any, error):
		return f(l.Name())
	}
	return nil, errors.Errorf("%s.%s in module %s has type %T", l.Kind(), l.Kind().ClassName(), ev.backend.Name(), impl)
}

func (ev *Evaluator) userImpl(fn *expr.UserFunction) (any, error) {
	if r, ok := ev.backend.(backend.UserFuncResolver); ok {
		if impl, ok := r.LookupUser(fn); ok {
			return impl, nil
		}
	}
	impl, ok := ev.registry.Lookup(fn, ev.backend.Name())
	if !ok {
		return nil, &backend.MissingImplError{Function: fn.Name(), Backend: ev.backend.Name()}
	}
	return impl, nil
}

func (ev *Evaluator) call(e *expr.Expression) (any, error) {
	fn := e.Func()
	var (
		impl any
		err  error
	)
	if u, ok := fn.(*expr.UserFunction); ok {
		impl, err = ev.userImpl(u)
	} else {
		impl, err = ev.resolve(fn.Namespace(), fn.Name())
	}
	if err != nil {
		return nil, err
	}
	f, ok := backend.AsFunc(impl)
	if !ok {
		return nil, errors.Errorf("%s in module %s is not callable (%T)", fn.QualifiedName(), ev.backend.Name(), impl)
	}
	args, err := ev.translateAll(e.Args())
	if err != nil {
		return nil, err
	}
	var kwargs map[string]any
	if kws := e.Kwargs(); len(kws) > 0 {
		kwargs = make(map[string]any, len(kws))
		for _, kw := range kws {
			v, err := ev.Translate(kw.Value)
			if err != nil {
				return nil, err
			}
			kwargs[kw.Name] = v
		}
	}
	out, err := f(args, kwargs)
	if err != nil {
		ev.log.WithFields(logrus.Fields{
			"func":    fn.QualifiedName(),
			"backend": ev.backend.Name(),
		}).Debugf("implementation failed: %v", err)
		return nil, errors.WithStack(&CallError{Func: fn.QualifiedName(), Args: args, Kwargs: kwargs, Err: err})
	}
	return out, nil
}
