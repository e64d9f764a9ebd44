package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// BoltBackend stores one bucket per collection in a single bbolt file. Values are
// JSON-encoded documents keyed by id.
type BoltBackend struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "bolt open %s: %v", path, err)
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Collection(name string) Collection {
	return &boltCollection{db: b.db, name: name}
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}

type boltCollection struct {
	db   *bolt.DB
	name string
}

func (c *boltCollection) Name() string { return c.name }

func (c *boltCollection) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []Record
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			if doc, ok := decodeListed(c.name, string(k), v); ok {
				records = append(records, Record{ID: string(k), Fields: doc})
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "bolt list %s: %v", c.name, err)
	}
	return records, nil
}

func (c *boltCollection) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var doc Document
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return ErrNotFound
		}
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		var err error
		doc, err = decodeDocument(raw)
		return err
	})
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	return Record{ID: id, Fields: doc}, nil
}

func (c *boltCollection) Create(ctx context.Context, fields Document) (Record, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, id, fields); err != nil {
		return Record{}, err
	}
	return Record{ID: id, Fields: fields.Clone()}, nil
}

func (c *boltCollection) Set(ctx context.Context, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(ErrValidationRejected, "bolt encode %s/%s: %v", c.name, id, err)
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(c.name))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), raw)
	})
	return c.wrap("set", err)
}

func (c *boltCollection) Update(ctx context.Context, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return ErrNotFound
		}
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return err
		}
		merged, err := json.Marshal(doc.Merge(fields))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), merged)
	})
	return c.wrap("update", err)
}

func (c *boltCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
	return c.wrap("delete", err)
}

func (c *boltCollection) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return errors.Wrapf(ErrRemoteUnavailable, "bolt %s %s: %v", op, c.name, err)
}

func decodeDocument(raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// decodeListed decodes one value met while listing a collection. A value that
// is not a JSON document is logged and skipped.
func decodeListed(collection, id string, raw []byte) (Document, bool) {
	doc, err := decodeDocument(raw)
	if err != nil {
		zap.L().Warn("skipping undecodable document",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return nil, false
	}
	return doc, true
}
