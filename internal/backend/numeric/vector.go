package numeric

import (
	"github.com/pkg/errors"
)

// Broadcast applies f element-wise. Either operand may be a scalar, which is
// repeated; two vectors must have the same length.
func Broadcast(x, y any, f BinaryFunc) ([]float64, error) {
	xs, xv, err := operand(x)
	if err != nil {
		return nil, err
	}
	ys, yv, err := operand(y)
	if err != nil {
		return nil, err
	}
	n := len(xs)
	switch {
	case xv && yv:
		if len(xs) != len(ys) {
			return nil, errors.Errorf("operands could not be broadcast together with shapes (%d,) (%d,)", len(xs), len(ys))
		}
	case yv:
		n = len(ys)
	case !xv:
		return nil, errors.New("expected at least one vector operand")
	}
	out := make([]float64, n)
	for i := range out {
		a, b := at(xs, xv, i), at(ys, yv, i)
		r, err := f(a, b)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = r
	}
	return out, nil
}

// Map applies f to every element of x.
func Map(x []float64, f UnaryFunc) ([]float64, error) {
	out := make([]float64, len(x))
	for i, e := range x {
		r, err := f(e)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = r
	}
	return out, nil
}

// Dot is the inner product of two vectors of equal length.
func Dot(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, errors.Errorf("shapes (%d,) and (%d,) not aligned", len(x), len(y))
	}
	var s float64
	for i := range x {
		s += x[i] * y[i]
	}
	return s, nil
}

// Sum adds the elements of x.
func Sum(x []float64) float64 {
	var s float64
	for _, e := range x {
		s += e
	}
	return s
}

// Prod multiplies the elements of x.
func Prod(x []float64) float64 {
	p := 1.0
	for _, e := range x {
		p *= e
	}
	return p
}

func operand(v any) ([]float64, bool, error) {
	if IsVector(v) {
		xs, err := Floats(v)
		return xs, true, err
	}
	f, err := Float(v)
	if err != nil {
		return nil, false, err
	}
	return []float64{f}, false, nil
}

func at(xs []float64, vec bool, i int) float64 {
	if vec {
		return xs[i]
	}
	return xs[0]
}
