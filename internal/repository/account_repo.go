package repository

import (
	"context"

	"wings-inventory/internal/model"
	"wings-inventory/internal/store"
)

// AccountRepository stores identity-provider accounts and their public profiles.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Save(ctx context.Context, account *model.Account) error

	SaveProfile(ctx context.Context, profile model.Profile) error
	FindProfile(ctx context.Context, uid string) (*model.Profile, error)
	TouchLastLogin(ctx context.Context, uid string, at string) error
}

var (
	accountCodec = NewStructCodec(func(a *model.Account, id string) { a.ID = id })
	profileCodec = NewStructCodec(func(p *model.Profile, id string) {
		if p.UID == "" {
			p.UID = id
		}
	})
)

type accountRepo struct {
	accounts *Gateway[model.Account]
	profiles *Gateway[model.Profile]
}

func NewAccountRepo(backend store.Backend) AccountRepository {
	return &accountRepo{
		accounts: NewGateway(backend.Collection(model.CollectionAccounts), accountCodec),
		profiles: NewGateway(backend.Collection(model.CollectionProfiles), profileCodec),
	}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	created, err := r.accounts.Create(ctx, *account)
	if err != nil {
		return err
	}
	*account = created
	return nil
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	a, err := r.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByEmail scans the collection; the store has no secondary indexes.
func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	accounts, err := r.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	want := model.NormalizeEmail(email)
	for i := range accounts {
		if model.NormalizeEmail(accounts[i].Email) == want {
			return &accounts[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *accountRepo) Save(ctx context.Context, account *model.Account) error {
	return r.accounts.Set(ctx, account.ID, *account)
}

func (r *accountRepo) SaveProfile(ctx context.Context, profile model.Profile) error {
	return r.profiles.Set(ctx, profile.UID, profile)
}

func (r *accountRepo) FindProfile(ctx context.Context, uid string) (*model.Profile, error) {
	p, err := r.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, uid string, at string) error {
	return r.profiles.Update(ctx, uid, store.Document{"last_login": at})
}
