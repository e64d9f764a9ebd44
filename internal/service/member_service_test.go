package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
)

func newMemberFixture(t *testing.T, emails ...string) (MemberService, repository.AccountRepository) {
	t.Helper()
	backend := store.NewMemoryBackend()
	accounts := repository.NewAccountRepo(backend)
	for _, e := range emails {
		require.NoError(t, accounts.Create(context.Background(), &model.Account{Email: e, CreatedAt: time.Now()}))
	}
	return NewMemberService(repository.NewMemberRepo(backend), accounts, nil), accounts
}

func TestCreateMemberLinksAccount(t *testing.T) {
	ctx := context.Background()
	svc, accounts := newMemberFixture(t, "clerk@wings.cafe")

	m, err := svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "ADMIN"}, nil)
	require.NoError(t, err)

	acc, err := accounts.FindByEmail(ctx, "clerk@wings.cafe")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, m.AccountID)

	_, err = svc.CreateMember(ctx, map[string]string{"name": "Again", "email": "clerk@wings.cafe", "role": "ADMIN"}, nil)
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestCreateMemberRejections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemberFixture(t, "clerk@wings.cafe")

	_, err := svc.CreateMember(ctx, map[string]string{"name": "Ghost", "email": "ghost@wings.cafe", "role": "ADMIN"}, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "OWNER"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "ADMIN", "password": "x"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateMemberRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemberFixture(t, "clerk@wings.cafe", "cook@wings.cafe")

	clerk, err := svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "ADMIN"}, nil)
	require.NoError(t, err)
	_, err = svc.CreateMember(ctx, map[string]string{"name": "Cook", "email": "cook@wings.cafe", "role": "ADMIN"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateMember(ctx, clerk.ID, map[string]string{"role": "MASTER_ADMIN"}, nil))
	got, err := svc.GetMember(ctx, clerk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMasterAdmin, got.Role)
	assert.Equal(t, "Clerk", got.Name)

	// keeping its own email is fine, taking another member's account is not
	assert.NoError(t, svc.UpdateMember(ctx, clerk.ID, map[string]string{"email": "clerk@wings.cafe"}, nil))
	assert.ErrorIs(t, svc.UpdateMember(ctx, clerk.ID, map[string]string{"email": "cook@wings.cafe"}, nil), ErrMemberExists)

	assert.ErrorIs(t, svc.UpdateMember(ctx, "missing", map[string]string{"name": "x"}, nil), store.ErrNotFound)
}

func TestLastMasterIsKept(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemberFixture(t, "owner@wings.cafe", "clerk@wings.cafe")

	owner, err := svc.CreateMember(ctx, map[string]string{"name": "Owner", "email": "owner@wings.cafe", "role": "MASTER_ADMIN"}, nil)
	require.NoError(t, err)
	clerk, err := svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "ADMIN"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteMember(ctx, owner.ID, nil), ErrLastMaster)
	assert.ErrorIs(t, svc.UpdateMember(ctx, owner.ID, map[string]string{"role": "ADMIN"}, nil), ErrLastMaster)
	assert.NoError(t, svc.UpdateMember(ctx, owner.ID, map[string]string{"name": "Boss"}, nil))
	assert.NoError(t, svc.DeleteMember(ctx, clerk.ID, nil))

	got, err := svc.GetMember(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMasterAdmin, got.Role)

	// with a second master either may step down
	clerk, err = svc.CreateMember(ctx, map[string]string{"name": "Clerk", "email": "clerk@wings.cafe", "role": "MASTER_ADMIN"}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateMember(ctx, owner.ID, map[string]string{"role": "ADMIN"}, nil))
	assert.ErrorIs(t, svc.DeleteMember(ctx, clerk.ID, nil), ErrLastMaster)
}
