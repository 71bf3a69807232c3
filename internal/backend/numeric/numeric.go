// Package numeric holds the float64 primitives shared by the executable
// backends: coercions, the real function table and operator semantics that
// follow the conventions of floored division.
package numeric

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDomain is returned when a function is evaluated outside its domain.
var ErrDomain = errors.New("math domain error")

// ErrZeroDivision is returned by the division family for a zero divisor.
var ErrZeroDivision = errors.New("division by zero")

// Float coerces a scalar to float64.
func Float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.Errorf("expected a number, got %T", v)
}

// Int coerces an integral scalar to int64.
func Int(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("expected an integral value, got %v", f)
	}
	return int64(f), nil
}

// IsNumber reports whether v is a scalar Float accepts.
func IsNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int64, int, int32, bool:
		return true
	}
	return false
}

// Floats coerces every element of v to float64.
func Floats(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := Float(e)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out[i] = f
		}
		return out, nil
	case []int64:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	case []int:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	}
	return nil, errors.Errorf("expected a vector, got %T", v)
}

// IsVector reports whether v is a sequence Floats accepts.
func IsVector(v any) bool {
	switch v.(type) {
	case []float64, []any, []int64, []int:
		return true
	}
	return false
}

// Constants of the real namespace.
var Constants = map[string]float64{
	"e":   math.E,
	"inf": math.Inf(1),
	"nan": math.NaN(),
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
}

// UnaryFunc is a real function of one argument.
type UnaryFunc func(x float64) (float64, error)

// BinaryFunc is a real function of two arguments.
type BinaryFunc func(x, y float64) (float64, error)

func total(f func(float64) float64) UnaryFunc {
	return func(x float64) (float64, error) { return f(x), nil }
}

// domain rejects results that are NaN for non-NaN input.
func domain(f func(float64) float64) UnaryFunc {
	return func(x float64) (float64, error) {
		r := f(x)
		if math.IsNaN(r) && !math.IsNaN(x) {
			return 0, ErrDomain
		}
		return r, nil
	}
}

// positive additionally rejects zero, where the logarithms diverge.
func positive(f func(float64) float64) UnaryFunc {
	return func(x float64) (float64, error) {
		if x <= 0 {
			return 0, ErrDomain
		}
		return f(x), nil
	}
}

// Unary is the table of one-argument real functions.
var Unary = map[string]UnaryFunc{
	"abs":     total(math.Abs),
	"acos":    domain(math.Acos),
	"acosh":   domain(math.Acosh),
	"asin":    domain(math.Asin),
	"asinh":   total(math.Asinh),
	"atan":    total(math.Atan),
	"atanh":   domain(math.Atanh),
	"ceil":    total(math.Ceil),
	"cos":     total(math.Cos),
	"cosh":    total(math.Cosh),
	"degrees": total(func(x float64) float64 { return x * 180 / math.Pi }),
	"erf":     total(math.Erf),
	"erfc":    total(math.Erfc),
	"exp":     total(math.Exp),
	"expm1":   total(math.Expm1),
	"fabs":    total(math.Abs),
	"factorial": func(x float64) (float64, error) {
		if x < 0 || x != math.Trunc(x) {
			return 0, errors.New("factorial() only accepts non-negative integral values")
		}
		return math.Round(math.Gamma(x + 1)), nil
	},
	"floor": total(math.Floor),
	"gamma": domain(math.Gamma),
	"isqrt": func(x float64) (float64, error) {
		if x < 0 || x != math.Trunc(x) {
			return 0, errors.New("isqrt() argument must be a non-negative integer")
		}
		r := math.Floor(math.Sqrt(x))
		for r*r > x {
			r--
		}
		return r, nil
	},
	"lgamma": total(func(x float64) float64 {
		r, _ := math.Lgamma(x)
		return r
	}),
	"log":     positive(math.Log),
	"log10":   positive(math.Log10),
	"log1p":   domain(math.Log1p),
	"log2":    positive(math.Log2),
	"radians": total(func(x float64) float64 { return x * math.Pi / 180 }),
	"sin":     total(math.Sin),
	"sinh":    total(math.Sinh),
	"sqrt":    domain(math.Sqrt),
	"tan":     total(math.Tan),
	"tanh":    total(math.Tanh),
	"trunc":   total(math.Trunc),
	"ulp":     total(Ulp),
}

// Binary is the table of two-argument real functions.
var Binary = map[string]BinaryFunc{
	"atan2": func(y, x float64) (float64, error) { return math.Atan2(y, x), nil },
	"comb": func(n, k float64) (float64, error) {
		if n < 0 || k < 0 || n != math.Trunc(n) || k != math.Trunc(k) {
			return 0, errors.New("comb() requires non-negative integers")
		}
		return Comb(int64(n), int64(k)), nil
	},
	"copysign": func(x, y float64) (float64, error) { return math.Copysign(x, y), nil },
	"fmod": func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrDomain
		}
		return math.Mod(x, y), nil
	},
	"hypot": func(x, y float64) (float64, error) { return math.Hypot(x, y), nil },
	"ldexp": func(x, e float64) (float64, error) {
		if e != math.Trunc(e) {
			return 0, errors.New("ldexp() exponent must be an integer")
		}
		return math.Ldexp(x, int(e)), nil
	},
	"nextafter": func(x, y float64) (float64, error) { return math.Nextafter(x, y), nil },
	"remainder": func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrDomain
		}
		return math.Remainder(x, y), nil
	},
}

// Predicates of the real namespace.
var Predicates = map[string]func(float64) bool{
	"isfinite": func(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) },
	"isinf":    func(x float64) bool { return math.IsInf(x, 0) },
	"isnan":    math.IsNaN,
}

// Frexp returns the mantissa and exponent of x.
func Frexp(x float64) (float64, int64) {
	m, e := math.Frexp(x)
	return m, int64(e)
}

// Modf returns the fractional and integral parts of x, in that order.
func Modf(x float64) (float64, float64) {
	i, f := math.Modf(x)
	return f, i
}

// Ulp is the value of the least significant bit of x.
func Ulp(x float64) float64 {
	x = math.Abs(x)
	switch {
	case math.IsNaN(x), math.IsInf(x, 0):
		return x
	case x == math.MaxFloat64:
		return x - math.Nextafter(x, 0)
	}
	return math.Nextafter(x, math.Inf(1)) - x
}

// Comb is the number of ways to choose k items from n.
func Comb(n, k int64) float64 {
	if k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := int64(1); i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return math.Round(r)
}

// Mod is the remainder of floored division; its sign follows y.
func Mod(x, y float64) float64 {
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

// FloorDiv is floored division.
func FloorDiv(x, y float64) float64 {
	return math.Floor((x - Mod(x, y)) / y)
}

// Arith is the table of arithmetic operators. Division by zero is an error.
var Arith = map[string]BinaryFunc{
	"add": func(x, y float64) (float64, error) { return x + y, nil },
	"sub": func(x, y float64) (float64, error) { return x - y, nil },
	"mul": func(x, y float64) (float64, error) { return x * y, nil },
	"truediv": func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrZeroDivision
		}
		return x / y, nil
	},
	"floordiv": func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrZeroDivision
		}
		return FloorDiv(x, y), nil
	},
	"mod": func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrZeroDivision
		}
		return Mod(x, y), nil
	},
	"pow": func(x, y float64) (float64, error) {
		if x == 0 && y < 0 {
			return 0, ErrZeroDivision
		}
		return math.Pow(x, y), nil
	},
}

// Compare is the table of comparison operators.
var Compare = map[string]func(x, y float64) bool{
	"eq": func(x, y float64) bool { return x == y },
	"ne": func(x, y float64) bool { return x != y },
	"lt": func(x, y float64) bool { return x < y },
	"le": func(x, y float64) bool { return x <= y },
	"gt": func(x, y float64) bool { return x > y },
	"ge": func(x, y float64) bool { return x >= y },
}

// Bitwise is the table of integer operators.
var Bitwise = map[string]func(x, y int64) (int64, error){
	"lshift": func(x, y int64) (int64, error) {
		if y < 0 {
			return 0, errors.New("negative shift count")
		}
		return x << uint64(y), nil
	},
	"rshift": func(x, y int64) (int64, error) {
		if y < 0 {
			return 0, errors.New("negative shift count")
		}
		return x >> uint64(y), nil
	},
	"and": func(x, y int64) (int64, error) { return x & y, nil },
	"xor": func(x, y int64) (int64, error) { return x ^ y, nil },
	"or":  func(x, y int64) (int64, error) { return x | y, nil },
}

// PowMod computes x**y % m over integers.
func PowMod(x, y, m int64) (int64, error) {
	if m == 0 {
		return 0, errors.New("pow() 3rd argument cannot be 0")
	}
	if y < 0 {
		return 0, errors.New("pow() negative exponent with modulus is not supported")
	}
	r := int64(1)
	x %= m
	for ; y > 0; y >>= 1 {
		if y&1 == 1 {
			r = r * x % m
		}
		x = x * x % m
	}
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r, nil
}
