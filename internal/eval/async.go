// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/expr"
)

// waveHandle is the pending evaluation of one binding of a wave.
type waveHandle struct {
	binding Binding
	done    chan struct{}
	value   any
	err     error
}

// WithWorkers lets EvalContent evaluate the bindings of a wave on up to n
// goroutines. Bindings of one wave never depend on each other.
func WithWorkers(n int) Option {
	return func(ev *Evaluator) { ev.workers = n }
}

// evalWave translates every binding of a wave with m applied. Results come
// back in wave order; the first failure in that order is returned.
func (ev *Evaluator) evalWave(wave []Binding, m *expr.Mapping) ([]*waveHandle, error) {
	handles := make([]*waveHandle, len(wave))
	for i, b := range wave {
		handles[i] = &waveHandle{binding: b, done: make(chan struct{})}
	}
	run := func(h *waveHandle) {
		defer close(h.done)
		h.value, h.err = ev.Translate(expr.Substitute(h.binding.Value, m))
	}

	if ev.workers <= 1 || len(wave) == 1 {
		for _, h := range handles {
			run(h)
		}
	} else {
		sem := make(chan struct{}, ev.workers)
		var wg sync.WaitGroup
		for _, h := range handles {
			h := h
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				run(h)
			}()
		}
		wg.Wait()
	}

	for _, h := range handles {
		<-h.done
		if h.err != nil {
			return nil, errors.Wrapf(h.err, "evaluating %s", h.binding.Key.Name())
		}
	}
	return handles, nil
}
