// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval_test

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend/std"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
)

// slowRegistry registers a function that sleeps and records how many calls
// were running at once.
func slowRegistry(peak *int64) (*expr.Registry, *expr.UserFunction) {
	reg := expr.NewRegistry()
	slow := expr.NewUserFunction("async_test_slow", 1, expr.KindReal)
	var active int64
	reg.Register(slow, expr.DefaultImpl, func(args []any, _ map[string]any) (any, error) {
		n := atomic.AddInt64(&active, 1)
		defer atomic.AddInt64(&active, -1)
		for {
			p := atomic.LoadInt64(peak)
			if n <= p || atomic.CompareAndSwapInt64(peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return args[0], nil
	})
	return reg, slow
}

func wideContent(slow *expr.UserFunction, n int) eval.Content {
	var c eval.Content
	for i := 0; i < n; i++ {
		key := expr.NewReal(fmt.Sprintf("k%d", i))
		c = append(c, eval.Binding{Key: key.Leaf, Value: slow.Call(expr.Lit{V: float64(i)})})
	}
	return c
}

func TestWaveWorkers(t *testing.T) {
	var peak int64
	reg, slow := slowRegistry(&peak)
	content := wideContent(slow, 8)

	out, err := eval.New(std.Default(), eval.WithRegistry(reg), eval.WithWorkers(4)).EvalContent(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 8; i++ {
		if out[fmt.Sprintf("k%d", i)] != float64(i) {
			t.Errorf("expected k%d = %d, got %v", i, i, out[fmt.Sprintf("k%d", i)])
		}
	}
	if peak < 2 || peak > 4 {
		t.Errorf("expected between 2 and 4 concurrent calls, got %d", peak)
	}
}

func TestWaveSequentialByDefault(t *testing.T) {
	var peak int64
	reg, slow := slowRegistry(&peak)
	if _, err := eval.New(std.Default(), eval.WithRegistry(reg)).EvalContent(wideContent(slow, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak != 1 {
		t.Errorf("expected one call at a time, got %d", peak)
	}
}

func TestWaveDependentBindingsWait(t *testing.T) {
	var peak int64
	reg, slow := slowRegistry(&peak)
	a, b := expr.NewReal("a"), expr.NewReal("b")
	content := eval.Content{
		{Key: b.Leaf, Value: slow.Call(a.Add(1))},
		{Key: a.Leaf, Value: slow.Call(expr.Lit{V: 1.0})},
	}
	out, err := eval.New(std.Default(), eval.WithRegistry(reg), eval.WithWorkers(4)).EvalContent(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["b"] != 2.0 {
		t.Errorf("expected b = 2, got %v", out["b"])
	}
	if peak != 1 {
		t.Errorf("expected dependent bindings to run in separate waves, got %d concurrent", peak)
	}
}

func TestWaveReportsFirstFailureInOrder(t *testing.T) {
	reg := expr.NewRegistry()
	fail := expr.NewUserFunction("async_test_fail", 1, expr.KindReal)
	reg.Register(fail, expr.DefaultImpl, func(args []any, _ map[string]any) (any, error) {
		if args[0].(float64) > 1 {
			time.Sleep(10 * time.Millisecond)
		}
		return nil, errors.Errorf("bad %v", args[0])
	})
	content := eval.Content{
		{Key: expr.NewReal("b").Leaf, Value: fail.Call(expr.Lit{V: 1.0})},
		{Key: expr.NewReal("a").Leaf, Value: fail.Call(expr.Lit{V: 2.0})},
	}
	for _, workers := range []int{1, 4} {
		_, err := eval.New(std.Default(), eval.WithRegistry(reg), eval.WithWorkers(workers)).EvalContent(content)
		if err == nil {
			t.Fatalf("workers=%d: expected error", workers)
		}
		if !strings.Contains(err.Error(), "evaluating a") || !strings.Contains(err.Error(), "bad 2") {
			t.Errorf("workers=%d: expected the failure of a, got %v", workers, err)
		}
	}
}
