package numeric

import (
	"math"
	"testing"
)

func TestFlooredDivision(t *testing.T) {
	tests := []struct {
		x, y       float64
		mod, floor float64
	}{
		{7, 3, 1, 2},
		{-7, 3, 2, -3},
		{7, -3, -2, -3},
		{-7, -3, -1, 2},
		{6, 3, 0, 2},
	}
	for _, tt := range tests {
		if got := Mod(tt.x, tt.y); got != tt.mod {
			t.Errorf("%v %% %v: expected %v, got %v", tt.x, tt.y, tt.mod, got)
		}
		if got := FloorDiv(tt.x, tt.y); got != tt.floor {
			t.Errorf("%v // %v: expected %v, got %v", tt.x, tt.y, tt.floor, got)
		}
	}
	if _, err := Arith["truediv"](1, 0); err != ErrZeroDivision {
		t.Errorf("expected ErrZeroDivision, got %v", err)
	}
}

func TestDomainErrors(t *testing.T) {
	for _, name := range []string{"sqrt", "log", "acos"} {
		if _, err := Unary[name](-2); err != ErrDomain {
			t.Errorf("%s(-2): expected ErrDomain, got %v", name, err)
		}
	}
	if v, err := Unary["sqrt"](math.NaN()); err != nil || !math.IsNaN(v) {
		t.Errorf("expected NaN to pass through sqrt, got %v, %v", v, err)
	}
}

func TestIntegerFunctions(t *testing.T) {
	if v, _ := Unary["factorial"](5); v != 120 {
		t.Errorf("expected 120, got %v", v)
	}
	if _, err := Unary["factorial"](2.5); err == nil {
		t.Error("expected error for non-integral factorial")
	}
	if v, _ := Unary["isqrt"](17); v != 4 {
		t.Errorf("expected 4, got %v", v)
	}
	if v, _ := Binary["comb"](5, 2); v != 10 {
		t.Errorf("expected 10, got %v", v)
	}
	if v, _ := PowMod(3, 4, 5); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if v, _ := PowMod(2, 3, -3); v != -1 {
		t.Errorf("expected -1, got %v", v)
	}
}

func TestCoercion(t *testing.T) {
	if f, err := Float(int64(3)); err != nil || f != 3 {
		t.Errorf("expected 3, got %v, %v", f, err)
	}
	if _, err := Float("3"); err == nil {
		t.Error("expected error coercing a string")
	}
	if i, err := Int(4.0); err != nil || i != 4 {
		t.Errorf("expected 4, got %v, %v", i, err)
	}
	if _, err := Int(4.5); err == nil {
		t.Error("expected error for a fractional value")
	}
	xs, err := Floats([]any{1, 2.5, true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(xs) != 3 || xs[2] != 1 {
		t.Errorf("expected [1 2.5 1], got %v", xs)
	}
}

func TestBroadcast(t *testing.T) {
	add := Arith["add"]
	got, err := Broadcast([]float64{1, 2, 3}, 10, add)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{11, 12, 13}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
	if _, err := Broadcast([]float64{1, 2}, []float64{1, 2, 3}, add); err == nil {
		t.Error("expected shape mismatch error")
	}
	if _, err := Broadcast(1, 2, add); err == nil {
		t.Error("expected error for two scalars")
	}
	if d, _ := Dot([]float64{1, 2, 3}, []float64{4, 5, 6}); d != 32 {
		t.Errorf("expected 32, got %v", d)
	}
	if s, p := Sum([]float64{1, 2, 3}), Prod([]float64{1, 2, 3}); s != 6 || p != 6 {
		t.Errorf("expected 6 and 6, got %v and %v", s, p)
	}
}
