package store

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/surrealdb/surrealdb.go"
)

// SurrealConfig selects the SurrealDB endpoint and namespace.
type SurrealConfig struct {
	URL       string
	User      string
	Pass      string
	Namespace string
	Database  string
}

// SurrealBackend maps each collection to a SurrealDB table. Ids are assigned by
// SurrealDB on create and exposed without the "table:" prefix.
type SurrealBackend struct {
	db *surrealdb.DB
	// the websocket client multiplexes requests but we keep calls serialized
	mu sync.Mutex
}

func OpenSurreal(cfg SurrealConfig) (*SurrealBackend, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "surreal connect %s: %v", cfg.URL, err)
	}
	if cfg.User != "" {
		if _, err := db.Signin(map[string]interface{}{"user": cfg.User, "pass": cfg.Pass}); err != nil {
			db.Close()
			return nil, errors.Wrapf(ErrRemoteUnavailable, "surreal signin: %v", err)
		}
	}
	if _, err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrRemoteUnavailable, "surreal use %s/%s: %v", cfg.Namespace, cfg.Database, err)
	}
	return &SurrealBackend{db: db}, nil
}

func (b *SurrealBackend) Collection(name string) Collection {
	return &surrealCollection{backend: b, name: name}
}

func (b *SurrealBackend) Close() error {
	b.db.Close()
	return nil
}

type surrealCollection struct {
	backend *SurrealBackend
	name    string
}

func (c *surrealCollection) Name() string { return c.name }

func (c *surrealCollection) thing(id string) string {
	return c.name + ":⟨" + id + "⟩"
}

func (c *surrealCollection) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.backend.mu.Lock()
	data, err := c.backend.db.Select(c.name)
	c.backend.mu.Unlock()
	if errors.Is(err, surrealdb.ErrNoRow) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, c.wrap("list", err)
	}

	docs, err := surrealRows(data)
	if err != nil {
		return nil, c.wrap("list", err)
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, c.record(doc))
	}
	return records, nil
}

func (c *surrealCollection) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	c.backend.mu.Lock()
	data, err := c.backend.db.Select(c.thing(id))
	c.backend.mu.Unlock()
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	docs, err := surrealRows(data)
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	if len(docs) == 0 {
		return Record{}, ErrNotFound
	}
	return c.record(docs[0]), nil
}

func (c *surrealCollection) Create(ctx context.Context, fields Document) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	c.backend.mu.Lock()
	data, err := c.backend.db.Create(c.name, map[string]interface{}(fields))
	c.backend.mu.Unlock()
	if err != nil {
		return Record{}, c.wrap("create", err)
	}
	created, err := surrealRows(data)
	if err != nil || len(created) == 0 {
		return Record{}, errors.Wrapf(ErrValidationRejected, "surreal create %s: unexpected result", c.name)
	}
	return c.record(created[0]), nil
}

func (c *surrealCollection) Set(ctx context.Context, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.backend.mu.Lock()
	_, err := c.backend.db.Update(c.thing(id), map[string]interface{}(fields))
	c.backend.mu.Unlock()
	return c.wrap("set", err)
}

func (c *surrealCollection) Update(ctx context.Context, id string, fields Document) error {
	if _, err := c.Get(ctx, id); err != nil {
		return err
	}
	c.backend.mu.Lock()
	_, err := c.backend.db.Change(c.thing(id), map[string]interface{}(fields))
	c.backend.mu.Unlock()
	return c.wrap("update", err)
}

func (c *surrealCollection) Delete(ctx context.Context, id string) error {
	if _, err := c.Get(ctx, id); err != nil {
		return err
	}
	c.backend.mu.Lock()
	_, err := c.backend.db.Delete(c.thing(id))
	c.backend.mu.Unlock()
	return c.wrap("delete", err)
}

// record strips the table prefix and angle brackets from the SurrealDB record id.
func (c *surrealCollection) record(doc Document) Record {
	raw, _ := doc["id"].(string)
	id := strings.TrimPrefix(raw, c.name+":")
	id = strings.TrimSuffix(strings.TrimPrefix(id, "⟨"), "⟩")
	fields := doc.Clone()
	delete(fields, "id")
	return Record{ID: id, Fields: fields}
}

func (c *surrealCollection) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, surrealdb.ErrNoRow) {
		return ErrNotFound
	}
	return errors.Wrapf(ErrRemoteUnavailable, "surreal %s %s: %v", op, c.name, err)
}

// surrealRows flattens an RPC result into documents. Selecting a table yields
// a list of records, selecting or creating one record yields the record or a
// one-element list, and query-style results wrap rows in {status, result}.
func surrealRows(data any) ([]Document, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case []any:
		var out []Document
		for _, item := range v {
			rows, err := surrealRows(item)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil
	case map[string]any:
		if result, ok := v["result"]; ok {
			if _, status := v["status"]; status {
				return surrealRows(result)
			}
		}
		return []Document{Document(v)}, nil
	case Document:
		return []Document{v}, nil
	}
	return nil, errors.Errorf("unexpected surreal result %T", data)
}
