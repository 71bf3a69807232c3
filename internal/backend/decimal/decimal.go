// Package decimal is an arbitrary-precision backend over
// github.com/shopspring/decimal. Reals are decimal.Decimal values. Only
// the functions the library provides exactly are implemented; the rest of
// the catalog is Unsupported.
package decimal

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/backend/code"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Name identifies the backend.
const Name = "decimal"

// DivisionPrecision is the number of decimal places kept by division.
const DivisionPrecision = 32

var pi = decimal.RequireFromString("3.14159265358979323846264338327950288419716939937510")

var e = decimal.RequireFromString("2.71828182845904523536028747135266249775724709369995")

// Value coerces a translated value to a decimal.
func Value(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Decimal{}, errors.Wrapf(err, "parsing %q", x)
		}
		return d, nil
	case bool:
		if x {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	}
	return decimal.Decimal{}, errors.Errorf("expected a decimal, got %T", v)
}

var errZeroDivision = errors.New("division by zero")

var arith = map[string]func(x, y decimal.Decimal) (decimal.Decimal, error){
	"add": func(x, y decimal.Decimal) (decimal.Decimal, error) { return x.Add(y), nil },
	"sub": func(x, y decimal.Decimal) (decimal.Decimal, error) { return x.Sub(y), nil },
	"mul": func(x, y decimal.Decimal) (decimal.Decimal, error) { return x.Mul(y), nil },
	"truediv": func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if y.IsZero() {
			return decimal.Decimal{}, errZeroDivision
		}
		return x.DivRound(y, DivisionPrecision), nil
	},
	"floordiv": func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if y.IsZero() {
			return decimal.Decimal{}, errZeroDivision
		}
		return x.Sub(mod(x, y)).DivRound(y, DivisionPrecision).Floor(), nil
	},
	"mod": func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if y.IsZero() {
			return decimal.Decimal{}, errZeroDivision
		}
		return mod(x, y), nil
	},
	"pow": func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if !y.Equal(y.Truncate(0)) {
			return decimal.Decimal{}, errors.Errorf("exponent %s is not an integer", y)
		}
		if x.IsZero() && y.IsNegative() {
			return decimal.Decimal{}, errZeroDivision
		}
		if y.IsNegative() {
			return decimal.NewFromInt(1).DivRound(x.Pow(y.Neg()), DivisionPrecision), nil
		}
		return x.Pow(y), nil
	},
}

// mod is the remainder of floored division.
func mod(x, y decimal.Decimal) decimal.Decimal {
	r := x.Mod(y)
	if !r.IsZero() && r.IsNegative() != y.IsNegative() {
		r = r.Add(y)
	}
	return r
}

var compare = map[string]func(c int) bool{
	"eq": func(c int) bool { return c == 0 },
	"ne": func(c int) bool { return c != 0 },
	"lt": func(c int) bool { return c < 0 },
	"le": func(c int) bool { return c <= 0 },
	"gt": func(c int) bool { return c > 0 },
	"ge": func(c int) bool { return c >= 0 },
}

var functions = map[string]func(x decimal.Decimal) decimal.Decimal{
	"abs":   decimal.Decimal.Abs,
	"fabs":  decimal.Decimal.Abs,
	"ceil":  decimal.Decimal.Ceil,
	"floor": decimal.Decimal.Floor,
	"trunc": func(x decimal.Decimal) decimal.Decimal { return x.Truncate(0) },
	"sin":   decimal.Decimal.Sin,
	"cos":   decimal.Decimal.Cos,
	"tan":   decimal.Decimal.Tan,
	"atan":  decimal.Decimal.Atan,
	"degrees": func(x decimal.Decimal) decimal.Decimal {
		return x.Mul(decimal.NewFromInt(180)).DivRound(pi, DivisionPrecision)
	},
	"radians": func(x decimal.Decimal) decimal.Decimal {
		return x.Mul(pi).DivRound(decimal.NewFromInt(180), DivisionPrecision)
	},
}

// New builds the backend.
func New() *backend.Module {
	m := backend.NewModule(Name)
	for _, ns := range []string{"real", "symbol"} {
		for name, f := range arith {
			m.Set(ns, name, binary(f))
		}
		for name, f := range compare {
			m.Set(ns, name, comparison(f))
		}
		m.Set(ns, "neg", unary(decimal.Decimal.Neg))
		m.Set(ns, "pos", unary(func(x decimal.Decimal) decimal.Decimal { return x }))
	}
	for name, f := range functions {
		m.Set("real", name, unary(f))
	}
	m.Set("real", "copysign", binary(func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if y.IsNegative() {
			return x.Abs().Neg(), nil
		}
		return x.Abs(), nil
	}))
	m.Set("real", "fmod", binary(func(x, y decimal.Decimal) (decimal.Decimal, error) {
		if y.IsZero() {
			return decimal.Decimal{}, errors.New("math domain error")
		}
		return x.Mod(y), nil
	}))
	m.Set("real", "pi", pi)
	m.Set("real", "e", e)
	m.Set("real", "tau", pi.Add(pi))
	m.Set("real", "Real", backend.Unsupported)
	m.Set("symbol", "Symbol", backend.Unsupported)

	for _, c := range expr.Callables() {
		if c.Namespace() == "real" || c.Namespace() == "symbol" {
			m.MarkUnsupported(c.Namespace(), c.Name())
		}
	}
	for _, l := range expr.Constants() {
		m.MarkUnsupported(l.Namespace(), l.Name())
	}
	for _, k := range []expr.Kind{expr.KindVector, expr.KindBoolean} {
		m.Set(k.String(), k.ClassName(), backend.Unsupported)
		for _, c := range expr.CallablesIn(k.String()) {
			m.MarkUnsupported(c.Namespace(), c.Name())
		}
	}

	m.SetAll(backend.Lang, map[string]any{
		backend.ToInt:   backend.LiteralFunc(func(v any) (any, error) { return Value(v) }),
		backend.ToFloat: backend.LiteralFunc(func(v any) (any, error) { return Value(v) }),
		backend.Assign:  backend.AssignFunc(eval.AssignStep),
		backend.Block:   eval.BlockCompiler(code.AsBlockCode),
	})
	return m
}

var shared = New()

// Default returns a process-wide decimal backend.
func Default() backend.Backend { return shared }

func unary(f func(decimal.Decimal) decimal.Decimal) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := Value(args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

func binary(f func(x, y decimal.Decimal) (decimal.Decimal, error)) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := Value(args[0])
		if err != nil {
			return nil, err
		}
		y, err := Value(args[1])
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

func comparison(f func(c int) bool) backend.Func {
	return func(args []any, _ map[string]any) (any, error) {
		x, err := Value(args[0])
		if err != nil {
			return nil, err
		}
		y, err := Value(args[1])
		if err != nil {
			return nil, err
		}
		return f(x.Cmp(y)), nil
	}
}
