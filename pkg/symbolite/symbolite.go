// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package symbolite provides the public API: expression construction,
// parsing, persistence and evaluation through pluggable backends.
package symbolite

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/backend/array"
	"github.com/dyscolab/symbolite/internal/backend/code"
	"github.com/dyscolab/symbolite/internal/backend/decimal"
	"github.com/dyscolab/symbolite/internal/backend/std"
	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/parse"
	"github.com/dyscolab/symbolite/internal/store"
)

var backends = map[string]func() backend.Backend{
	std.Name:     std.Default,
	array.Name:   array.Default,
	decimal.Name: decimal.Default,
	code.Name:    func() backend.Backend { return code.Default() },
}

// BackendNames lists the built-in backends.
func BackendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackendByName returns a built-in backend.
func BackendByName(name string) (Backend, error) {
	f, ok := backends[name]
	if !ok {
		return nil, errors.Errorf("unknown backend %q (available: %v)", name, BackendNames())
	}
	return f(), nil
}

// NotFoundError reports a namespace missing from the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "namespace " + e.Name + " not found"
}

// Session ties a store, a backend and a user-function registry together.
type Session struct {
	store     store.Store
	backend   backend.Backend
	registry  *expr.Registry
	log       logrus.FieldLogger
	cacheSize int
	workers   int
	err       error
	evaluator *eval.Evaluator
}

// New creates a session with the given options. Without a store option
// namespaces are kept in memory; without a backend option the std backend
// is used.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		registry: expr.DefaultRegistry,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.err != nil {
		if s.store != nil {
			s.store.Close()
		}
		return nil, s.err
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if s.cacheSize > 0 {
		c, err := store.NewCached(s.store, s.cacheSize)
		if err != nil {
			s.store.Close()
			return nil, err
		}
		s.store = c
	}
	if s.backend == nil {
		s.backend = std.Default()
	}
	s.evaluator = s.newEvaluator(s.backend)
	return s, nil
}

func (s *Session) newEvaluator(be backend.Backend) *eval.Evaluator {
	return eval.New(be,
		eval.WithRegistry(s.registry),
		eval.WithLogger(s.log),
		eval.WithWorkers(s.workers),
	)
}

// Backend returns the session's backend.
func (s *Session) Backend() Backend { return s.backend }

// SetBackend switches the backend used from now on.
func (s *Session) SetBackend(be Backend) {
	s.backend = be
	s.evaluator = s.newEvaluator(be)
}

// Store returns the session's store.
func (s *Session) Store() Store { return s.store }

// Parse reads namespace source without storing it.
func (s *Session) Parse(src string) (*expr.Namespace, error) {
	return parse.Namespace(src, parse.WithRegistry(s.registry))
}

// Import parses namespace source and stores it under its header name.
func (s *Session) Import(src string) (*expr.Namespace, error) {
	ns, err := s.Parse(src)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// ImportReader imports namespace source from a reader.
func (s *Session) ImportReader(r io.Reader) (*expr.Namespace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.Import(string(data))
}

// ImportFile imports a namespace source file.
func (s *Session) ImportFile(path string) (*expr.Namespace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ns, err := s.ImportReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "importing %s", path)
	}
	return ns, nil
}

// Save stores ns under its name.
func (s *Session) Save(ns *Namespace) error {
	if err := s.store.Put(ns.Name(), ns); err != nil {
		return err
	}
	s.log.WithField("namespace", ns.Name()).Debug("saved namespace")
	return nil
}

// Load retrieves a stored namespace.
func (s *Session) Load(name string) (*Namespace, error) {
	ns, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, &NotFoundError{Name: name}
	}
	return ns, nil
}

// Names lists the stored namespaces.
func (s *Session) Names() ([]string, error) {
	return s.store.List()
}

// Delete removes a stored namespace and its history.
func (s *Session) Delete(name string) error {
	return s.store.Delete(name)
}

// History returns up to limit stored versions of a namespace, newest first.
func (s *Session) History(name string, limit int) ([]store.VersionEntry, error) {
	hs, ok := s.store.(store.HistoryStore)
	if !ok {
		return nil, errors.Errorf("%T does not keep history", s.store)
	}
	return hs.GetHistory(name, limit)
}

// Show renders a stored namespace as source.
func (s *Session) Show(name string) (string, error) {
	ns, err := s.Load(name)
	if err != nil {
		return "", err
	}
	return code.AsCode(ns)
}

// Evaluate evaluates every attribute of a stored namespace after binding
// free symbols by name.
func (s *Session) Evaluate(name string, values map[string]any) (map[string]any, error) {
	ns, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	return s.EvaluateNamespace(ns, values)
}

// EvaluateNamespace evaluates every attribute of ns after binding free
// symbols by name.
func (s *Session) EvaluateNamespace(ns *Namespace, values map[string]any) (map[string]any, error) {
	out, err := s.evaluator.EvalContent(eval.NamespaceContent(ns, expr.BindNames(ns, values)))
	if err != nil {
		return nil, err
	}
	if u, ok := s.backend.(backend.Unwrapper); ok {
		for k, v := range out {
			out[k] = u.Unwrap(v)
		}
	}
	return out, nil
}

// EvalExpr parses src, resolving names against the stored namespace called
// scope when it is not empty, binds values by name and evaluates.
func (s *Session) EvalExpr(src, scope string, values map[string]any) (any, error) {
	names := map[string]expr.Node{}
	if scope != "" {
		ns, err := s.Load(scope)
		if err != nil {
			return nil, err
		}
		names = parse.Scope(ns)
	}
	for name := range values {
		if _, ok := names[name]; !ok {
			names[name] = expr.NewReal(name)
		}
	}
	n, err := parse.Expr(src, names, parse.WithRegistry(s.registry))
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(expr.Substitute(n, expr.BindNames(n, values)))
}

// Compile parses a "def" block and compiles it with the session backend.
func (s *Session) Compile(src string) (*eval.Compiled, error) {
	b, err := parse.Block(src, parse.WithRegistry(s.registry))
	if err != nil {
		return nil, err
	}
	v, err := s.evaluator.Translate(b)
	if err != nil {
		return nil, err
	}
	c, ok := v.(*eval.Compiled)
	if !ok {
		return nil, errors.Errorf("backend %s does not compile blocks", s.backend.Name())
	}
	return c, nil
}

// Close releases resources.
func (s *Session) Close() error {
	return s.store.Close()
}
