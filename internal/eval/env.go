// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

// Env holds the values a running block reads its inputs from and binds
// its assignments into. It wraps the caller's map, so assignments stay
// visible to the caller after the block returns.
type Env struct {
	values map[string]any
}

// NewEnv wraps values; a nil map starts an empty environment.
func NewEnv(values map[string]any) *Env {
	if values == nil {
		values = make(map[string]any)
	}
	return &Env{values: values}
}

// Get retrieves a value by name.
func (e *Env) Get(name string) (any, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Set binds a value by name.
func (e *Env) Set(name string, v any) {
	e.values[name] = v
}

// Values returns the underlying map.
func (e *Env) Values() map[string]any { return e.values }
