package repository

import (
	"context"

	"wings-inventory/internal/model"
	"wings-inventory/internal/store"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id string, fields store.Document) error
	Delete(ctx context.Context, id string) error
}

var productCodec = NewStructCodec(func(p *model.Product, id string) { p.ID = id })

type productRepo struct {
	gw *Gateway[model.Product]
}

func NewProductRepo(backend store.Backend) ProductRepository {
	return &productRepo{gw: NewGateway(backend.Collection(model.CollectionProducts), productCodec)}
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.gw.List(ctx)
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := r.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores the product and sets product.ID.
func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	created, err := r.gw.Create(ctx, *product)
	if err != nil {
		return err
	}
	*product = created
	return nil
}

func (r *productRepo) Update(ctx context.Context, id string, fields store.Document) error {
	return r.gw.Update(ctx, id, fields)
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.gw.Delete(ctx, id)
}
