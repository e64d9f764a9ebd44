package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend keeps every collection in process memory. It backs the tests and
// the "memory" driver.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string]Document
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]Document)}
}

func (b *MemoryBackend) Collection(name string) Collection {
	return &memoryCollection{backend: b, name: name}
}

func (b *MemoryBackend) Close() error { return nil }

func (b *MemoryBackend) docs(name string) map[string]Document {
	docs, ok := b.data[name]
	if !ok {
		docs = make(map[string]Document)
		b.data[name] = docs
	}
	return docs
}

type memoryCollection struct {
	backend *MemoryBackend
	name    string
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	docs := c.backend.docs(c.name)
	records := make([]Record, 0, len(docs))
	for id, doc := range docs {
		records = append(records, Record{ID: id, Fields: doc.Clone()})
	}
	return records, nil
}

func (c *memoryCollection) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	doc, ok := c.backend.docs(c.name)[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Fields: doc.Clone()}, nil
}

func (c *memoryCollection) Create(ctx context.Context, fields Document) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	id := uuid.NewString()
	c.backend.docs(c.name)[id] = fields.Clone()
	return Record{ID: id, Fields: fields.Clone()}, nil
}

func (c *memoryCollection) Set(ctx context.Context, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	c.backend.docs(c.name)[id] = fields.Clone()
	return nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	doc, ok := c.backend.docs(c.name)[id]
	if !ok {
		return ErrNotFound
	}
	doc.Merge(fields)
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	docs := c.backend.docs(c.name)
	if _, ok := docs[id]; !ok {
		return ErrNotFound
	}
	delete(docs, id)
	return nil
}
