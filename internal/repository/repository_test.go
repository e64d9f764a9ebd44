package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
)

func TestProductRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(store.NewMemoryBackend())

	p := &model.Product{
		Name:     "Wings",
		Category: "Food",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 7,
	}
	require.NoError(t, repo.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wings", got.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	assert.Equal(t, 7, got.Quantity)
}

func TestProductRepoDecodesLegacyDocuments(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	coll := backend.Collection(model.CollectionProducts)

	cases := []struct {
		name     string
		doc      store.Document
		price    string
		quantity int
	}{
		{"text values", store.Document{"name": "Tea", "price": "10", "quantity": "5"}, "10", 5},
		{"numbers", store.Document{"name": "Cake", "price": 3.25, "quantity": 5.0}, "3.25", 5},
		{"leading zero is decimal", store.Document{"name": "Pie", "price": "1", "quantity": "08"}, "1", 8},
		{"garbage reads as zero", store.Document{"name": "Cola", "price": "ten", "quantity": "lots"}, "0", 0},
		{"negative quantity reads as zero", store.Document{"name": "Juice", "price": "2", "quantity": -3}, "2", 0},
		{"missing fields", store.Document{"name": "Water"}, "0", 0},
		{"largest count", store.Document{"name": "Ice", "price": "1", "quantity": "2147483647"}, "1", 2147483647},
	}
	ids := map[string]string{}
	for _, c := range cases {
		rec, err := coll.Create(ctx, c.doc)
		require.NoError(t, err)
		ids[c.name] = rec.ID
	}

	repo := repository.NewProductRepo(backend)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := repo.FindByID(ctx, ids[c.name])
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(c.price).Equal(got.Price), "price %s", got.Price)
			assert.Equal(t, c.quantity, got.Quantity)
		})
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(cases))
}

func TestProductRepoDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepo(store.NewMemoryBackend())

	p := &model.Product{Name: "Tea"}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductRepoUpdateMissing(t *testing.T) {
	repo := repository.NewProductRepo(store.NewMemoryBackend())
	err := repo.Update(context.Background(), "gone", store.Document{"name": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountRepoFindByEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAccountRepo(store.NewMemoryBackend())

	acc := &model.Account{Email: "Owner@Wings.cafe", CreatedAt: time.Now()}
	require.NoError(t, acc.SetPassword("secret1"))
	require.NoError(t, repo.Create(ctx, acc))

	got, err := repo.FindByEmail(ctx, "  owner@wings.CAFE ")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	assert.True(t, got.CheckPassword("secret1"))

	_, err = repo.FindByEmail(ctx, "nobody@wings.cafe")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountRepoProfileMirror(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAccountRepo(store.NewMemoryBackend())

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveProfile(ctx, model.Profile{UID: "u1", Email: "a@b.com", CreatedAt: created, LastLogin: created}))

	later := created.Add(time.Hour)
	require.NoError(t, repo.TouchLastLogin(ctx, "u1", model.Timestamp(later)))

	p, err := repo.FindProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", p.Email)
	assert.True(t, created.Equal(p.CreatedAt))
	assert.True(t, later.Equal(p.LastLogin))
}

func TestMemberRepoLookups(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemberRepo(store.NewMemoryBackend())

	has, err := repo.HasRole(ctx, model.RoleMasterAdmin)
	require.NoError(t, err)
	assert.False(t, has)

	m := &model.Member{Name: "Lerato", Email: "l@wings.cafe", AccountID: "acc-1", Role: model.RoleMasterAdmin}
	require.NoError(t, repo.Create(ctx, m))

	has, err = repo.HasRole(ctx, model.RoleMasterAdmin)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := repo.FindByAccountID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = repo.FindByAccountID(ctx, "acc-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransactionRepoStockMovement(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTransactionRepo(store.NewMemoryBackend())
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }

	for _, tx := range []model.Transaction{
		{ProductID: "p1", Type: model.TxIn, Quantity: 5, CreatedAt: day(1, 9)},
		{ProductID: "p1", Type: model.TxOut, Quantity: 2, CreatedAt: day(1, 18)},
		{ProductID: "p2", Type: model.TxIn, Quantity: 7, CreatedAt: day(3, 12)},
		{ProductID: "p2", Type: model.TxOut, Quantity: 1, CreatedAt: day(9, 12)},
	} {
		tx := tx
		require.NoError(t, repo.Record(ctx, &tx))
		assert.NotEmpty(t, tx.ID)
	}

	movement, err := repo.GetStockMovement(ctx, day(1, 0), day(5, 0))
	require.NoError(t, err)
	assert.Equal(t, []model.StockMovementData{
		{Date: "2024-03-01", Inbound: 5, Outbound: 2},
		{Date: "2024-03-03", Inbound: 7},
	}, movement)

	p2, err := repo.FindByProduct(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, p2, 2)
	assert.True(t, p2[0].CreatedAt.After(p2[1].CreatedAt))
}
