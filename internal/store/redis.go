package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each document as a JSON string under prefix:collection:id and
// keeps the ids of a collection in the set prefix:collection.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "wings"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Collection(name string) Collection {
	return &redisCollection{client: b.client, setKey: b.prefix + ":" + name, name: name}
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

type redisCollection struct {
	client *redis.Client
	setKey string
	name   string
}

func (c *redisCollection) Name() string { return c.name }

func (c *redisCollection) docKey(id string) string {
	return c.setKey + ":" + id
}

func (c *redisCollection) List(ctx context.Context) ([]Record, error) {
	ids, err := c.client.SMembers(ctx, c.setKey).Result()
	if err != nil {
		return nil, c.wrap("list", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.docKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, c.wrap("list", err)
	}

	records := make([]Record, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// id left in the set by an interrupted delete
			continue
		}
		if doc, ok := decodeListed(c.name, ids[i], []byte(raw)); ok {
			records = append(records, Record{ID: ids[i], Fields: doc})
		}
	}
	return records, nil
}

func (c *redisCollection) Get(ctx context.Context, id string) (Record, error) {
	raw, err := c.client.Get(ctx, c.docKey(id)).Result()
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	doc, err := decodeDocument([]byte(raw))
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	return Record{ID: id, Fields: doc}, nil
}

func (c *redisCollection) Create(ctx context.Context, fields Document) (Record, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, id, fields); err != nil {
		return Record{}, err
	}
	return Record{ID: id, Fields: fields.Clone()}, nil
}

func (c *redisCollection) Set(ctx context.Context, id string, fields Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(ErrValidationRejected, "encode %s/%s: %v", c.name, id, err)
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.docKey(id), raw, 0)
		pipe.SAdd(ctx, c.setKey, id)
		return nil
	})
	return c.wrap("set", err)
}

func (c *redisCollection) Update(ctx context.Context, id string, fields Document) error {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(rec.Fields.Merge(fields))
	if err != nil {
		return errors.Wrapf(ErrValidationRejected, "encode %s/%s: %v", c.name, id, err)
	}
	// SetXX: a document deleted between the read and the write stays deleted.
	ok, err := c.client.SetXX(ctx, c.docKey(id), raw, redis.KeepTTL).Result()
	if err != nil {
		return c.wrap("update", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (c *redisCollection) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, c.docKey(id))
		pipe.SRem(ctx, c.setKey, id)
		return nil
	})
	if err != nil {
		return c.wrap("delete", err)
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *redisCollection) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrNotFound
	default:
		return errors.Wrapf(ErrRemoteUnavailable, "redis %s %s: %v", op, c.name, err)
	}
}
