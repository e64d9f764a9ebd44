package repository

import (
	"context"
	"sort"
	"time"

	"wings-inventory/internal/model"
	"wings-inventory/internal/store"
)

type TransactionRepository interface {
	Record(ctx context.Context, tx *model.Transaction) error
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByProduct(ctx context.Context, productID string) ([]model.Transaction, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error)
}

var transactionCodec = NewStructCodec(func(t *model.Transaction, id string) { t.ID = id })

type transactionRepo struct {
	gw *Gateway[model.Transaction]
}

func NewTransactionRepo(backend store.Backend) TransactionRepository {
	return &transactionRepo{gw: NewGateway(backend.Collection(model.CollectionTransactions), transactionCodec)}
}

// Record stores tx and sets tx.ID. A zero CreatedAt is stamped with the current time.
func (r *transactionRepo) Record(ctx context.Context, tx *model.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	created, err := r.gw.Create(ctx, *tx)
	if err != nil {
		return err
	}
	*tx = created
	return nil
}

// FindAll returns every transaction, newest first.
func (r *transactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	all, err := r.gw.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (r *transactionRepo) FindByProduct(ctx context.Context, productID string) ([]model.Transaction, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.ProductID == productID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// GetStockMovement aggregates inbound and outbound quantities per UTC day in
// [startDate, endDate], oldest day first.
func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error) {
	all, err := r.gw.List(ctx)
	if err != nil {
		return nil, err
	}

	days := map[string]*model.StockMovementData{}
	for _, tx := range all {
		if tx.CreatedAt.Before(startDate) || tx.CreatedAt.After(endDate) {
			continue
		}
		date := tx.CreatedAt.UTC().Format(time.DateOnly)
		d, ok := days[date]
		if !ok {
			d = &model.StockMovementData{Date: date}
			days[date] = d
		}
		if tx.Type == model.TxIn {
			d.Inbound += tx.Quantity
		} else {
			d.Outbound += tx.Quantity
		}
	}

	results := make([]model.StockMovementData, 0, len(days))
	for _, d := range days {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}
