package repository

import (
	"context"

	"wings-inventory/internal/model"
	"wings-inventory/internal/store"
)

type MemberRepository interface {
	FindAll(ctx context.Context) ([]model.Member, error)
	FindByID(ctx context.Context, id string) (*model.Member, error)
	FindByAccountID(ctx context.Context, accountID string) (*model.Member, error)
	HasRole(ctx context.Context, role string) (bool, error)
	Create(ctx context.Context, member *model.Member) error
	Update(ctx context.Context, id string, fields store.Document) error
	Delete(ctx context.Context, id string) error
}

var memberCodec = NewStructCodec(func(m *model.Member, id string) { m.ID = id })

type memberRepo struct {
	gw *Gateway[model.Member]
}

func NewMemberRepo(backend store.Backend) MemberRepository {
	return &memberRepo{gw: NewGateway(backend.Collection(model.CollectionMembers), memberCodec)}
}

func (r *memberRepo) FindAll(ctx context.Context) ([]model.Member, error) {
	return r.gw.List(ctx)
}

func (r *memberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	m, err := r.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) FindByAccountID(ctx context.Context, accountID string) (*model.Member, error) {
	members, err := r.gw.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].AccountID == accountID {
			return &members[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memberRepo) HasRole(ctx context.Context, role string) (bool, error) {
	members, err := r.gw.List(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	created, err := r.gw.Create(ctx, *member)
	if err != nil {
		return err
	}
	*member = created
	return nil
}

func (r *memberRepo) Update(ctx context.Context, id string, fields store.Document) error {
	return r.gw.Update(ctx, id, fields)
}

func (r *memberRepo) Delete(ctx context.Context, id string) error {
	return r.gw.Delete(ctx, id)
}
