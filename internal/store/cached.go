package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/expr"
)

// DefaultCacheSize is the number of documents Cached keeps by default.
const DefaultCacheSize = 128

// Cached fronts a Store with an LRU cache of encoded documents. Every Get
// decodes a fresh namespace, so callers may modify what they receive.
type Cached struct {
	Store
	docs *lru.Cache[string, string]
}

// NewCached wraps s with a cache holding up to size documents.
func NewCached(s Store, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	docs, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating cache")
	}
	return &Cached{Store: s, docs: docs}, nil
}

// Get serves from the cache, falling back to the wrapped store.
func (c *Cached) Get(name string) (*expr.Namespace, error) {
	if doc, ok := c.docs.Get(name); ok {
		return Decode(doc)
	}
	ns, err := c.Store.Get(name)
	if err != nil || ns == nil {
		return ns, err
	}
	doc, _, err := Encode(ns)
	if err != nil {
		return nil, err
	}
	c.docs.Add(name, doc)
	return ns, nil
}

// Put writes through to the wrapped store.
func (c *Cached) Put(name string, ns *expr.Namespace) error {
	c.docs.Remove(name)
	if err := c.Store.Put(name, ns); err != nil {
		return err
	}
	doc, _, err := Encode(ns)
	if err != nil {
		return err
	}
	c.docs.Add(name, doc)
	return nil
}

// Delete removes the name from the cache and the wrapped store.
func (c *Cached) Delete(name string) error {
	c.docs.Remove(name)
	return c.Store.Delete(name)
}

// Len is the number of cached documents.
func (c *Cached) Len() int { return c.docs.Len() }

// GetHistory delegates to the wrapped store when it keeps history.
func (c *Cached) GetHistory(name string, limit int) ([]VersionEntry, error) {
	hs, ok := c.Store.(HistoryStore)
	if !ok {
		return nil, errors.Errorf("%T does not keep history", c.Store)
	}
	return hs.GetHistory(name, limit)
}
