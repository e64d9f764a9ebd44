package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestBoltListSkipsUndecodableValues(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "corrupt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	products := b.Collection("products")
	good, err := products.Create(ctx, Document{"name": "Tea"})
	require.NoError(t, err)
	require.NoError(t, b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("products")).Put([]byte("broken"), []byte("{not json"))
	}))

	list, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, good.ID, list[0].ID)
	assert.Equal(t, "Tea", list[0].Fields["name"])
}

func TestDecodeListed(t *testing.T) {
	doc, ok := decodeListed("products", "a", []byte(`{"name":"Tea","quantity":5}`))
	require.True(t, ok)
	assert.Equal(t, Document{"name": "Tea", "quantity": 5.0}, doc)

	for _, raw := range []string{"", "{not json", `["a list"]`, `"text"`} {
		_, ok := decodeListed("products", "b", []byte(raw))
		assert.False(t, ok, raw)
	}
}
