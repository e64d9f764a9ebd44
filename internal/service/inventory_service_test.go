package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wings-inventory/internal/events"
	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

func teaFields() map[string]string {
	return map[string]string{
		"name": "Tea", "description": "Hot", "category": "Drinks", "price": "10", "quantity": "5",
	}
}

func TestCreateProductThenList(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, pub)

	created, err := svc.CreateProduct(ctx, teaFields(), &model.Session{AccountID: "acc-1", Email: "a@b.com"})
	require.NoError(t, err)

	list, err := svc.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	p := list[0]
	assert.Equal(t, created.ID, p.ID)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, "Hot", p.Description)
	assert.Equal(t, "Drinks", p.Category)
	assert.True(t, decimal.NewFromInt(10).Equal(p.Price))
	assert.Equal(t, 5, p.Quantity)

	assert.Equal(t, []string{"product_created"}, pub.actions())
	assert.Equal(t, "a@b.com", pub.events[0].User.Email)
}

func TestCreateProductRejectsBadValues(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, nil)

	for name, mutate := range map[string]func(map[string]string){
		"missing field":     func(f map[string]string) { delete(f, "category") },
		"empty field":       func(f map[string]string) { f["name"] = "  " },
		"bad price":         func(f map[string]string) { f["price"] = "ten" },
		"negative quantity": func(f map[string]string) { f["quantity"] = "-1" },
		"fractional count":  func(f map[string]string) { f["quantity"] = "1.5" },
		"oversized count":   func(f map[string]string) { f["quantity"] = "3000000000" },
		"unknown field":     func(f map[string]string) { f["sku"] = "X1" },
	} {
		t.Run(name, func(t *testing.T) {
			fields := teaFields()
			mutate(fields)
			_, err := svc.CreateProduct(ctx, fields, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	list, err := svc.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateProductChangesOnlyNamedFields(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, nil)

	created, err := svc.CreateProduct(ctx, teaFields(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProduct(ctx, created.ID, map[string]string{"quantity": "12", "price": "9.75"}, nil))

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)
	assert.True(t, decimal.RequireFromString("9.75").Equal(got.Price))
	assert.Equal(t, "Tea", got.Name)
	assert.Equal(t, "Drinks", got.Category)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, nil)
	err := svc.UpdateProduct(context.Background(), "nope", map[string]string{"name": "x"}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProductTwice(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, pub)

	created, err := svc.CreateProduct(ctx, teaFields(), nil)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, created.ID, nil))
	require.NoError(t, svc.DeleteProduct(ctx, created.ID, nil))

	list, err := svc.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []string{"product_created", "product_deleted", "product_deleted"}, pub.actions())
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(store.NewMemoryBackend())
	inv := NewInventoryService(repo, nil, nil)

	for _, f := range []map[string]string{
		{"name": "Tea", "description": "Hot", "category": "Drinks", "price": "10", "quantity": "5"},
		{"name": "Wings", "description": "Spicy", "category": "Food", "price": "2.50", "quantity": "40"},
		{"name": "Cola", "description": "Cold", "category": "Drinks", "price": "1", "quantity": "10"},
	} {
		_, err := inv.CreateProduct(ctx, f, nil)
		require.NoError(t, err)
	}

	stats, err := NewDashboardService(repo, nil, 10).GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStock)
	assert.True(t, decimal.NewFromInt(160).Equal(stats.TotalValue), stats.TotalValue.String())
	assert.Len(t, stats.Chart, 3)
}

func TestQuantityChangesRecordTransactions(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	products := repository.NewProductRepo(backend)
	txs := repository.NewTransactionRepo(backend)
	svc := NewInventoryService(products, txs, nil)
	actor := &model.Session{AccountID: "acc-1", Email: "a@b.com"}

	created, err := svc.CreateProduct(ctx, teaFields(), actor)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateProduct(ctx, created.ID, map[string]string{"quantity": "12"}, actor))
	require.NoError(t, svc.UpdateProduct(ctx, created.ID, map[string]string{"name": "Green Tea"}, actor))
	require.NoError(t, svc.UpdateProduct(ctx, created.ID, map[string]string{"quantity": "3"}, actor))
	require.NoError(t, svc.DeleteProduct(ctx, created.ID, actor))

	got, err := svc.GetTransactions(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got, 4)

	var in, out int
	for _, tx := range got {
		assert.Equal(t, "acc-1", tx.CreatedBy)
		assert.False(t, tx.CreatedAt.IsZero())
		switch tx.Type {
		case model.TxIn:
			in += tx.Quantity
		case model.TxOut:
			out += tx.Quantity
		}
	}
	assert.Equal(t, 12, in)
	assert.Equal(t, 12, out)

	stats, err := NewDashboardService(products, txs, 10).GetDashboardStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.Movement, 1)
	assert.Equal(t, 12, stats.Movement[0].Inbound)
	assert.Equal(t, 12, stats.Movement[0].Outbound)
}

func TestTransactionsWithoutLog(t *testing.T) {
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, nil)
	got, err := svc.GetTransactions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLargestQuantityRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(repository.NewProductRepo(store.NewMemoryBackend()), nil, nil)

	fields := teaFields()
	fields["quantity"] = "2147483647"
	created, err := svc.CreateProduct(ctx, fields, nil)
	require.NoError(t, err)
	assert.Equal(t, 2147483647, created.Quantity)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2147483647, got.Quantity)
}
