// Package store is the document-store boundary. Every backend exposes the same
// per-collection contract: documents are flat maps of primitive values keyed by an
// opaque, store-assigned id.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrRemoteUnavailable  = errors.New("document store unavailable")
	ErrValidationRejected = errors.New("document rejected by store")
)

// Document is the wire shape of one stored entity (field name -> primitive value).
type Document map[string]any

// Clone returns a shallow copy; values are primitives so this is a full copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge overwrites the named fields of d with those of patch and returns d.
func (d Document) Merge(patch Document) Document {
	for k, v := range patch {
		d[k] = v
	}
	return d
}

// Record is a document together with its id.
type Record struct {
	ID     string
	Fields Document
}

type Collection interface {
	Name() string
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, fields Document) (Record, error)
	// Set writes the document under a caller-chosen id, replacing any previous one.
	Set(ctx context.Context, id string, fields Document) error
	// Update overwrites only the given fields. Last writer wins.
	Update(ctx context.Context, id string, fields Document) error
	Delete(ctx context.Context, id string) error
}

type Backend interface {
	Collection(name string) Collection
	Close() error
}
