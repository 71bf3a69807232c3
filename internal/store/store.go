// Package store provides persistence for named namespaces, with a version
// history per name.
package store

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/dyscolab/symbolite/internal/expr"
)

// Store is the interface for namespace persistence.
type Store interface {
	// Get retrieves a namespace by name. Returns nil if not found.
	Get(name string) (*expr.Namespace, error)
	// Put stores a namespace by name, recording a new version unless the
	// stored one is identical.
	Put(name string, ns *expr.Namespace) error
	// Delete removes a namespace and its history.
	Delete(name string) error
	// List returns the stored names in order.
	List() ([]string, error)
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single version of a persisted namespace.
type VersionEntry struct {
	Version int
	Value   string // JSON document
	Hash    string
	Ts      time.Time
}

// Namespace decodes the stored document.
func (v VersionEntry) Namespace() (*expr.Namespace, error) {
	return Decode(v.Value)
}

// HistoryStore extends Store with version history queries.
type HistoryStore interface {
	// GetHistory returns up to limit versions, newest first; a limit of 0
	// returns all of them. A name that was never stored has nil history.
	GetHistory(name string, limit int) ([]VersionEntry, error)
}

// MetadataStore holds string settings next to the namespaces.
type MetadataStore interface {
	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error
}

// Encode serializes ns and returns the document with its content hash.
func Encode(ns *expr.Namespace) (doc, hash string, err error) {
	if ns == nil {
		return "", "", errors.New("cannot store a nil namespace")
	}
	data, err := expr.Marshal(ns)
	if err != nil {
		return "", "", errors.Wrapf(err, "encoding namespace %s", ns.Name())
	}
	return string(data), fmt.Sprintf("%016x", xxh3.Hash(data)), nil
}

// Decode parses a document written by Encode.
func Decode(doc string) (*expr.Namespace, error) {
	n, err := expr.Unmarshal([]byte(doc))
	if err != nil {
		return nil, errors.Wrap(err, "decoding namespace")
	}
	ns, ok := n.(*expr.Namespace)
	if !ok {
		return nil, errors.Errorf("stored document is a %T, not a namespace", n)
	}
	return ns, nil
}
