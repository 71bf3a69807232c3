package decimal

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

func evaluate(t *testing.T, n expr.Node, values map[string]any) decimal.Decimal {
	t.Helper()
	v, err := eval.Evaluate(expr.Substitute(n, expr.BindNames(n, values)), Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := v.(decimal.Decimal)
	if !ok {
		t.Fatalf("expected decimal.Decimal, got %T", v)
	}
	return d
}

func TestExactArithmetic(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	vals := map[string]any{"x": 0.1, "y": 0.2}
	if got := evaluate(t, x.Add(y), vals); got.String() != "0.3" {
		t.Errorf("expected '0.3', got '%s'", got)
	}
	if got := evaluate(t, x.Mul(10).Pow(3), vals); got.String() != "1" {
		t.Errorf("expected '1', got '%s'", got)
	}
	if got := evaluate(t, x.Pow(-1), vals); got.String() != "10" {
		t.Errorf("expected '10', got '%s'", got)
	}
	third := evaluate(t, expr.NewReal("one").Div(3), map[string]any{"one": 1})
	if got := third.String(); got != "0.33333333333333333333333333333333" {
		t.Errorf("expected 32 places, got '%s'", got)
	}
}

func TestFlooredOperators(t *testing.T) {
	x, y := expr.NewReal("x"), expr.NewReal("y")
	vals := map[string]any{"x": -7, "y": 3}
	if got := evaluate(t, x.Mod(y), vals); got.String() != "2" {
		t.Errorf("expected '2', got '%s'", got)
	}
	if got := evaluate(t, x.FloorDiv(y), vals); got.String() != "-3" {
		t.Errorf("expected '-3', got '%s'", got)
	}
}

func TestComparison(t *testing.T) {
	x := expr.NewReal("x")
	n := expr.Substitute(x.Lt(1), expr.NewMapping().Set(x, 0.5))
	v, err := eval.Evaluate(n, Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != true {
		t.Errorf("expected true, got %v", v)
	}
}

func TestUnsupported(t *testing.T) {
	x := expr.Lit{V: 1.0}
	for _, n := range []expr.Node{expr.Exp.Call(x), expr.Sqrt.Call(x), expr.Inf, expr.NewVector("v").Sum()} {
		_, err := eval.Translate(n, Default())
		var ue *backend.UnsupportedError
		if !errors.As(err, &ue) {
			t.Errorf("%s: expected UnsupportedError, got %v", n, err)
		}
	}
}

func TestCatalogCovered(t *testing.T) {
	if missing := backend.Missing(Default()); len(missing) > 0 {
		t.Errorf("expected every catalog entry to be covered, missing %v", missing)
	}
}
