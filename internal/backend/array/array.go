// Package array is the element-wise numeric backend. Every real operation
// accepts float64 scalars or []float64 arrays and broadcasts scalars over
// arrays. Arithmetic follows IEEE 754: division by zero yields an infinity
// or NaN and functions outside their domain yield NaN instead of failing.
package array

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/backend/code"
	"github.com/dyscolab/symbolite/internal/backend/numeric"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Name identifies the backend.
const Name = "array"

// unsupported lists the real functions without an element-wise counterpart.
var unsupported = []string{"erf", "erfc", "gamma", "lgamma", "factorial", "comb", "isqrt", "ulp"}

var ieee = map[string]numeric.BinaryFunc{
	"add":      func(x, y float64) (float64, error) { return x + y, nil },
	"sub":      func(x, y float64) (float64, error) { return x - y, nil },
	"mul":      func(x, y float64) (float64, error) { return x * y, nil },
	"truediv":  func(x, y float64) (float64, error) { return x / y, nil },
	"floordiv": func(x, y float64) (float64, error) { return math.Floor(x / y), nil },
	"mod": func(x, y float64) (float64, error) {
		if y == 0 {
			return math.NaN(), nil
		}
		return numeric.Mod(x, y), nil
	},
	"pow": func(x, y float64) (float64, error) { return math.Pow(x, y), nil },
}

// New builds the backend.
func New() *backend.Module {
	m := backend.NewModule(Name)
	for _, ns := range []string{"real", "symbol"} {
		operators(m, ns)
	}
	m.Set("symbol", "getitem", backend.Func(func(args []any, _ map[string]any) (any, error) {
		xs, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		i, err := numeric.Int(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "only integers are valid indices")
		}
		if i < 0 {
			i += int64(len(xs))
		}
		if i < 0 || i >= int64(len(xs)) {
			return nil, errors.Errorf("index %d is out of bounds for axis 0 with size %d", i, len(xs))
		}
		return xs[i], nil
	}))
	m.Set("symbol", "getattr", backend.Unsupported)

	for _, name := range unsupported {
		m.Set("real", name, backend.Unsupported)
	}
	for name, f := range numeric.Unary {
		if _, ok := m.Lookup("real", name); !ok {
			m.Set("real", name, lift1(nan(f)))
		}
	}
	for name, f := range numeric.Binary {
		if _, ok := m.Lookup("real", name); !ok {
			m.Set("real", name, lift2(nan2(f)))
		}
	}
	for name, p := range numeric.Predicates {
		m.Set("real", name, predicate(p))
	}
	m.Set("real", "frexp", lift1Pair(func(x float64) (float64, float64) {
		mant, exp := numeric.Frexp(x)
		return mant, float64(exp)
	}))
	m.Set("real", "modf", lift1Pair(numeric.Modf))
	for name, c := range numeric.Constants {
		m.Set("real", name, c)
	}

	for _, name := range []string{"add", "sub", "mul", "truediv", "floordiv"} {
		m.Set("vector", name, lift2(ieee[name]))
	}
	m.Set("vector", "eq", compare(numeric.Compare["eq"]))
	m.Set("vector", "ne", compare(numeric.Compare["ne"]))
	m.Set("vector", "matmul", backend.Func(dot))
	m.Set("vector", "neg", lift1(func(x float64) (float64, error) { return -x, nil }))
	m.Set("vector", "pos", lift1(func(x float64) (float64, error) { return x, nil }))
	m.Set("vector", "invert", backend.Unsupported)
	m.Set("vector", "sum", reduce(numeric.Sum))
	m.Set("vector", "prod", reduce(numeric.Prod))

	boolOps := map[string]func(x, y bool) bool{
		"eq":  func(x, y bool) bool { return x == y },
		"ne":  func(x, y bool) bool { return x != y },
		"and": func(x, y bool) bool { return x && y },
		"xor": func(x, y bool) bool { return x != y },
		"or":  func(x, y bool) bool { return x || y },
	}
	for name, f := range boolOps {
		m.Set("boolean", name, logical(f))
	}

	for _, k := range expr.Kinds() {
		m.Set(k.String(), k.ClassName(), backend.Unsupported)
	}
	m.SetAll(backend.Lang, map[string]any{
		backend.Assign: backend.AssignFunc(eval.AssignStep),
		backend.Block:  eval.BlockCompiler(code.AsBlockCode),
		backend.ToList: backend.LiteralFunc(func(v any) (any, error) {
			xs, err := numeric.Floats(v)
			if err != nil {
				return v, nil
			}
			return xs, nil
		}),
	})
	return m
}

var shared = New()

// Default returns a process-wide array backend.
func Default() backend.Backend { return shared }

func operators(m *backend.Module, ns string) {
	for name, f := range ieee {
		m.Set(ns, name, lift2(f))
	}
	for name, cmp := range numeric.Compare {
		m.Set(ns, name, compare(cmp))
	}
	for name, f := range numeric.Bitwise {
		m.Set(ns, name, bitwise(f))
	}
	m.Set(ns, "matmul", backend.Func(dot))
	m.Set(ns, "neg", lift1(func(x float64) (float64, error) { return -x, nil }))
	m.Set(ns, "pos", lift1(func(x float64) (float64, error) { return x, nil }))
	m.Set(ns, "invert", backend.Unsupported)
	m.Set(ns, "pow3", backend.Unsupported)
}

func nan(f numeric.UnaryFunc) numeric.UnaryFunc {
	return func(x float64) (float64, error) {
		r, err := f(x)
		if err != nil {
			return math.NaN(), nil
		}
		return r, nil
	}
}

func nan2(f numeric.BinaryFunc) numeric.BinaryFunc {
	return func(x, y float64) (float64, error) {
		r, err := f(x, y)
		if err != nil {
			return math.NaN(), nil
		}
		return r, nil
	}
}

// lift1 applies f to a scalar or to every element of an array.
func lift1(f numeric.UnaryFunc) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if numeric.IsVector(args[0]) {
			xs, err := numeric.Floats(args[0])
			if err != nil {
				return nil, err
			}
			return numeric.Map(xs, f)
		}
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		return f(x)
	}
}

// lift2 applies f to scalars or broadcasts it over arrays.
func lift2(f numeric.BinaryFunc) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if numeric.IsVector(args[0]) || numeric.IsVector(args[1]) {
			return numeric.Broadcast(args[0], args[1], f)
		}
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		y, err := numeric.Float(args[1])
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

func lift1Pair(f func(float64) (float64, float64)) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if numeric.IsVector(args[0]) {
			xs, err := numeric.Floats(args[0])
			if err != nil {
				return nil, err
			}
			a, b := make([]float64, len(xs)), make([]float64, len(xs))
			for i, x := range xs {
				a[i], b[i] = f(x)
			}
			return []any{a, b}, nil
		}
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		a, b := f(x)
		return []any{a, b}, nil
	}
}

func predicate(p func(float64) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if numeric.IsVector(args[0]) {
			xs, err := numeric.Floats(args[0])
			if err != nil {
				return nil, err
			}
			out := make([]bool, len(xs))
			for i, x := range xs {
				out[i] = p(x)
			}
			return out, nil
		}
		x, err := numeric.Float(args[0])
		if err != nil {
			return nil, err
		}
		return p(x), nil
	}
}

// compare yields a bool for scalars and a []bool mask for arrays.
func compare(cmp func(x, y float64) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if !numeric.IsVector(args[0]) && !numeric.IsVector(args[1]) {
			x, err := numeric.Float(args[0])
			if err != nil {
				return nil, err
			}
			y, err := numeric.Float(args[1])
			if err != nil {
				return nil, err
			}
			return cmp(x, y), nil
		}
		var out []bool
		_, err := numeric.Broadcast(args[0], args[1], func(x, y float64) (float64, error) {
			out = append(out, cmp(x, y))
			return 0, nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
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

func logical(f func(x, y bool) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		xs, xv := bools(args[0])
		ys, yv := bools(args[1])
		if xs == nil || ys == nil {
			return nil, errors.Errorf("expected booleans, got %T and %T", args[0], args[1])
		}
		if !xv && !yv {
			return f(xs[0], ys[0]), nil
		}
		n := max(len(xs), len(ys))
		if xv && yv && len(xs) != len(ys) {
			return nil, errors.Errorf("operands could not be broadcast together with shapes (%d,) (%d,)", len(xs), len(ys))
		}
		out := make([]bool, n)
		for i := range out {
			a, b := xs[0], ys[0]
			if xv {
				a = xs[i]
			}
			if yv {
				b = ys[i]
			}
			out[i] = f(a, b)
		}
		return out, nil
	}
}

func bools(v any) ([]bool, bool) {
	switch x := v.(type) {
	case bool:
		return []bool{x}, false
	case []bool:
		return x, true
	}
	return nil, false
}

func dot(args []any, _ map[string]any) (any, error) {
	x, err := numeric.Floats(args[0])
	if err != nil {
		return nil, err
	}
	y, err := numeric.Floats(args[1])
	if err != nil {
		return nil, err
	}
	return numeric.Dot(x, y)
}

func reduce(f func([]float64) float64) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		xs, err := numeric.Floats(args[0])
		if err != nil {
			return nil, err
		}
		return f(xs), nil
	}
}
