package symbolite

import (
	"github.com/sirupsen/logrus"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/expr"
	"github.com/dyscolab/symbolite/internal/store"
)

// Option configures a Session.
type Option func(*Session)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(s *Session) {
		st, err := store.NewSQLite(path, store.WithLogger(s.log))
		if err != nil {
			s.err = err
			return
		}
		s.store = st
	}
}

// WithPostgresStore configures PostgreSQL persistence from a lib/pq
// connection string.
func WithPostgresStore(dsn string) Option {
	return func(s *Session) {
		st, err := store.NewPostgres(dsn, store.WithLogger(s.log))
		if err != nil {
			s.err = err
			return
		}
		s.store = st
	}
}

// WithMemoryStore configures an in-memory store (the default).
func WithMemoryStore() Option {
	return func(s *Session) {
		s.store = store.NewMemory()
	}
}

// WithStore uses a custom store.
func WithStore(st Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithCacheSize fronts the store with an LRU cache of n namespaces. Zero
// disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Session) {
		s.cacheSize = n
	}
}

// WithBackend sets the backend used by Evaluate and Compile.
func WithBackend(be Backend) Option {
	return func(s *Session) {
		s.backend = be
	}
}

// WithBackendName selects one of the built-in backends by name.
func WithBackendName(name string) Option {
	return func(s *Session) {
		be, err := BackendByName(name)
		if err != nil {
			s.err = err
			return
		}
		s.backend = be
	}
}

// WithLogger sets the logger for the session, its store and expression
// warnings. Apply it before the store options so the store logs there too.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = log
		expr.SetLogger(log)
	}
}

// WithRegistry resolves user functions in r instead of the default registry.
func WithRegistry(r *expr.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithWorkers evaluates independent namespace attributes on up to n
// goroutines.
func WithWorkers(n int) Option {
	return func(s *Session) {
		s.workers = n
	}
}

// Store interface for custom stores.
type Store = store.Store

// Backend interface for custom backends.
type Backend = backend.Backend
