package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"wings-inventory/internal/store"
)

// Gateway is the typed view of one named collection.
type Gateway[T any] struct {
	coll  store.Collection
	codec Codec[T]
}

func NewGateway[T any](coll store.Collection, codec Codec[T]) *Gateway[T] {
	return &Gateway[T]{coll: coll, codec: codec}
}

func (g *Gateway[T]) Collection() string { return g.coll.Name() }

// List returns every document of the collection in store order. Documents
// that cannot be decoded are logged and skipped.
func (g *Gateway[T]) List(ctx context.Context) ([]T, error) {
	records, err := g.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := g.codec.Decode(rec)
		if err != nil {
			zap.L().Warn("skipping undecodable document",
				zap.String("collection", g.coll.Name()),
				zap.String("id", rec.ID),
				zap.Error(err))
			continue
		}
		items = append(items, v)
	}
	return items, nil
}

func (g *Gateway[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := g.coll.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.decode(rec)
}

// Create stores v and returns it with the id assigned by the store.
func (g *Gateway[T]) Create(ctx context.Context, v T) (T, error) {
	rec, err := g.coll.Create(ctx, g.codec.Encode(v))
	if err != nil {
		var zero T
		return zero, err
	}
	return g.decode(rec)
}

// Set stores v under a caller-chosen id.
func (g *Gateway[T]) Set(ctx context.Context, id string, v T) error {
	return g.coll.Set(ctx, id, g.codec.Encode(v))
}

// Update overwrites only the fields present in patch.
func (g *Gateway[T]) Update(ctx context.Context, id string, patch store.Document) error {
	return g.coll.Update(ctx, id, patch)
}

// Delete removes the document. Deleting a missing document is not an error.
func (g *Gateway[T]) Delete(ctx context.Context, id string) error {
	err := g.coll.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (g *Gateway[T]) decode(rec store.Record) (T, error) {
	v, err := g.codec.Decode(rec)
	if err != nil {
		return v, errors.Wrapf(store.ErrValidationRejected, "decode %s/%s: %v", g.coll.Name(), rec.ID, err)
	}
	return v, nil
}
