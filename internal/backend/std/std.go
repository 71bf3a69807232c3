// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package std is the executable scalar backend. Reals are float64, booleans
// are bool and vectors are []float64; arithmetic follows floored division and
// raises on division by zero and on domain errors.
package std

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/backend/code"
	"github.com/dyscolab/symbolite/internal/backend/numeric"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Name identifies the backend.
const Name = "std"

// New builds the backend.
func New() *backend.Module {
	m := backend.NewModule(Name)
	scalarOperators(m, "real")
	scalarOperators(m, "symbol")
	m.Set("symbol", "getitem", backend.Func(getItem))
	m.Set("symbol", "getattr", backend.Func(getAttr))

	for name, f := range numeric.Unary {
		m.Set("real", name, unary(f))
	}
	for name, f := range numeric.Binary {
		m.Set("real", name, binary(f))
	}
	for name, p := range numeric.Predicates {
		m.Set("real", name, predicate(p))
	}
	m.Set("real", "frexp", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		mant, exp := numeric.Frexp(x)
		return []any{mant, exp}, nil
	}))
	m.Set("real", "modf", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		frac, whole := numeric.Modf(x)
		return []any{frac, whole}, nil
	}))
	for name, c := range numeric.Constants {
		m.Set("real", name, c)
	}

	vectorOperators(m)
	booleanOperators(m)

	for _, k := range expr.Kinds() {
		m.Set(k.String(), k.ClassName(), backend.Unsupported)
	}
	m.Set(backend.Lang, backend.Assign, backend.AssignFunc(eval.AssignStep))
	m.Set(backend.Lang, backend.Block, eval.BlockCompiler(code.AsBlockCode))
	return m
}

var shared = New()

// Default returns a process-wide std backend.
func Default() backend.Backend { return shared }

func args2(args []any) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, errors.Errorf("expected 2 arguments, got %d", len(args))
	}
	x, err := numeric.Float(args[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := numeric.Float(args[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func unary(f numeric.UnaryFunc) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		return f(x)
	}
}

func binary(f numeric.BinaryFunc) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, y, err := args2(args)
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

func predicate(p func(float64) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		return p(x), nil
	}
}

func scalarOperators(m *backend.Module, ns string) {
	for name, f := range numeric.Arith {
		m.Set(ns, name, binary(f))
	}
	for name, cmp := range numeric.Compare {
		m.Set(ns, name, compare(name, cmp))
	}
	for name, f := range numeric.Bitwise {
		m.Set(ns, name, bitwise(f))
	}
	m.Set(ns, "matmul", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Floats(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "matmul")
		}
		y, err := numeric.Floats(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "matmul")
		}
		return numeric.Dot(x, y)
	}))
	m.Set(ns, "neg", unary(func(x float64) (float64, error) { return -x, nil }))
	m.Set(ns, "pos", unary(func(x float64) (float64, error) { return x, nil }))
	m.Set(ns, "invert", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Int(args[0])
		if err != nil {
			return nil, err
		}
		return ^x, nil
	}))
	m.Set(ns, "pow3", backend.Func(func(args []any, _ map[string]any) (any, error) {
		var ints [3]int64
		for i := range ints {
			v, err := numeric.Int(args[i])
			if err != nil {
				return nil, errors.Wrap(err, "pow() 3rd argument not allowed unless all arguments are integers")
			}
			ints[i] = v
		}
		return numeric.PowMod(ints[0], ints[1], ints[2])
	}))
}

// compare orders numbers; equality falls back to deep equality for
// anything else.
func compare(name string, cmp func(x, y float64) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if numeric.IsNumber(args[0]) && numeric.IsNumber(args[1]) {
			x, y, err := args2(args)
			if err != nil {
				return nil, err
			}
			return cmp(x, y), nil
		}
		switch name {
		case "eq":
			return reflect.DeepEqual(args[0], args[1]), nil
		case "ne":
			return !reflect.DeepEqual(args[0], args[1]), nil
		}
		return nil, errors.Errorf("'%s' not supported between instances of %T and %T", name, args[0], args[1])
	}
}

func bitwise(f func(x, y int64) (int64, error)) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Int(args[0])
		if err != nil {
			return nil, err
		}
		y, err := numeric.Int(args[1])
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

func vectorOperators(m *backend.Module) {
	for _, name := range []string{"add", "sub", "mul", "truediv", "floordiv"} {
		f := numeric.Arith[name]
		m.Set("vector", name, backend.Func(func(args []any, _ map[string]any) (any, error) {
			return numeric.Broadcast(args[0], args[1], f)
		}))
	}
	for _, name := range []string{"eq", "ne"} {
		want := name == "eq"
		m.Set("vector", name, backend.Func(func(args []any, _ map[string]any) (any, error) {
			x, err := numeric.Floats(args[0])
			if err != nil {
				return nil, err
			}
			y, err := numeric.Floats(args[1])
			if err != nil {
				return nil, err
			}
			return reflect.DeepEqual(x, y) == want, nil
		}))
	}
	m.Set("vector", "matmul", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		y, err := numeric.Floats(args[1])
		if err != nil {
			return nil, err
		}
		return numeric.Dot(x, y)
	}))
	m.Set("vector", "neg", vectorMap(func(x float64) (float64, error) { return -x, nil }))
	m.Set("vector", "pos", vectorMap(func(x float64) (float64, error) { return x, nil }))
	m.Set("vector", "invert", backend.Unsupported)
	m.Set("vector", "sum", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		return numeric.Sum(x), nil
	}))
	m.Set("vector", "prod", backend.Func(func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		return numeric.Prod(x), nil
	}))
}

func vectorMap(f numeric.UnaryFunc) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		return numeric.Map(x, f)
	}
}

func booleanOperators(m *backend.Module) {
	ops := map[string]func(x, y bool) bool{
		"eq":  func(x, y bool) bool { return x == y },
		"ne":  func(x, y bool) bool { return x != y },
		"and": func(x, y bool) bool { return x && y },
		"xor": func(x, y bool) bool { return x != y },
		"or":  func(x, y bool) bool { return x || y },
	}
	for name, f := range ops {
		f := f
		m.Set("boolean", name, backend.Func(func(args []any, _ map[string]any) (any, error) {
			x, ok := args[0].(bool)
			if !ok {
				return nil, errors.Errorf("expected a boolean, got %T", args[0])
			}
			y, ok := args[1].(bool)
			if !ok {
				return nil, errors.Errorf("expected a boolean, got %T", args[1])
			}
			return f(x, y), nil
		}))
	}
}

func getItem(args []any, _ map[string]any) (any, error) {
	switch c := args[0].(type) {
	case map[string]any:
		k, ok := args[1].(string)
		if !ok {
			return nil, errors.Errorf("map key must be a string, got %T", args[1])
		}
		v, ok := c[k]
		if !ok {
			return nil, errors.Errorf("key %q not found", k)
		}
		return v, nil
	case []float64:
		i, err := index(args[1], len(c))
		if err != nil {
			return nil, err
		}
		return c[i], nil
	case []any:
		i, err := index(args[1], len(c))
		if err != nil {
			return nil, err
		}
		return c[i], nil
	case string:
		i, err := index(args[1], len(c))
		if err != nil {
			return nil, err
		}
		return c[i : i+1], nil
	}
	return nil, errors.Errorf("%T is not subscriptable", args[0])
}

// index resolves i against a sequence of length n; negative values count
// from the end.
func index(v any, n int) (int, error) {
	i, err := numeric.Int(v)
	if err != nil {
		return 0, errors.Wrap(err, "indices must be integers")
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, errors.Errorf("index %v out of range", v)
	}
	return int(i), nil
}

func getAttr(args []any, _ map[string]any) (any, error) {
	name, ok := args[1].(string)
	if !ok {
		return nil, errors.Errorf("attribute name must be a string, got %T", args[1])
	}
	if c, ok := args[0].(map[string]any); ok {
		if v, ok := c[name]; ok {
			return v, nil
		}
	}
	return nil, errors.Errorf("%T has no attribute %s", args[0], name)
}
