package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

type fixture struct {
	store      *repository.MemoryStore
	svc        FranchiseServiceInterface
	admin      *domain.AuthUser
	franchisee *domain.AuthUser
	diner      *domain.AuthUser
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	add := func(name string, role domain.Role) *domain.AuthUser {
		u, err := store.AddUser(ctx, domain.User{
			Name:  name,
			Email: name + "@jwt.com",
			Roles: []domain.UserRole{{Role: role}},
		}, "hash")
		require.NoError(t, err)
		return &domain.AuthUser{User: u}
	}

	return fixture{
		store:      store,
		svc:        NewFranchiseService(store, store),
		admin:      add("admin", domain.RoleAdmin),
		franchisee: add("franchisee", domain.RoleDiner),
		diner:      add("diner", domain.RoleDiner),
	}
}

func (f fixture) createFranchise(t *testing.T, name string) domain.Franchise {
	t.Helper()
	req := domain.CreateFranchiseRequest{Name: name, Admins: []domain.AdminEmailRef{{Email: f.franchisee.Email}}}
	fr, err := f.svc.CreateFranchise(context.Background(), f.admin, req)
	require.NoError(t, err)
	return fr
}

func TestCreateFranchise(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fr := f.createFranchise(t, "pizzaPocket")
	assert.Equal(t, "pizzaPocket", fr.Name)
	assert.Equal(t, []domain.FranchiseAdmin{{ID: f.franchisee.ID, Name: "franchisee", Email: "franchisee@jwt.com"}}, fr.Admins)

	u, err := f.store.GetUserByID(ctx, f.franchisee.ID)
	require.NoError(t, err)
	assert.Contains(t, u.Roles, domain.UserRole{Role: domain.RoleFranchisee, ObjectID: fr.ID})

	_, err = f.svc.CreateFranchise(ctx, f.admin, domain.CreateFranchiseRequest{Name: "pizzaPocket"})
	assert.Equal(t, apperr.Conflict("franchise already exists"), err)

	_, err = f.svc.CreateFranchise(ctx, f.diner, domain.CreateFranchiseRequest{Name: "mine"})
	assert.Equal(t, apperr.Forbidden("unable to create a franchise"), err)

	_, err = f.svc.CreateFranchise(ctx, nil, domain.CreateFranchiseRequest{Name: "mine"})
	assert.Equal(t, apperr.Forbidden("unable to create a franchise"), err)

	req := domain.CreateFranchiseRequest{Name: "ghost", Admins: []domain.AdminEmailRef{{Email: "nonexistent@example.com"}}}
	_, err = f.svc.CreateFranchise(ctx, f.admin, req)
	assert.Equal(t, apperr.NotFound("unknown user for franchise admin nonexistent@example.com provided"), err)
}

func TestListFranchises(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fr := f.createFranchise(t, "pizzaPocket")
	f.createFranchise(t, "slicePalace")
	_, err := f.svc.CreateStore(ctx, f.admin, fr.ID, domain.CreateStoreRequest{Name: "SLC"})
	require.NoError(t, err)

	t.Run("anonymous sees plain stores", func(t *testing.T) {
		list, err := f.svc.ListFranchises(ctx, nil, 0, 10, "pizza*")
		require.NoError(t, err)
		require.Len(t, list.Franchises, 1)
		got := list.Franchises[0]
		assert.Nil(t, got.Admins)
		require.Len(t, got.Stores, 1)
		assert.Nil(t, got.Stores[0].TotalRevenue)
	})

	t.Run("admin sees admins and revenue", func(t *testing.T) {
		list, err := f.svc.ListFranchises(ctx, f.admin, 0, 10, "PIZZAPOCKET")
		require.NoError(t, err)
		require.Len(t, list.Franchises, 1)
		got := list.Franchises[0]
		assert.Len(t, got.Admins, 1)
		require.NotNil(t, got.Stores[0].TotalRevenue)
		assert.Zero(t, *got.Stores[0].TotalRevenue)
	})

	t.Run("paging", func(t *testing.T) {
		list, err := f.svc.ListFranchises(ctx, f.diner, 0, 1, "")
		require.NoError(t, err)
		assert.Len(t, list.Franchises, 1)
		assert.True(t, list.More)

		list, err = f.svc.ListFranchises(ctx, f.diner, 1, 1, "*")
		require.NoError(t, err)
		assert.Equal(t, "slicePalace", list.Franchises[0].Name)
		assert.False(t, list.More)

		list, err = f.svc.ListFranchises(ctx, f.diner, -3, 0, "*")
		require.NoError(t, err)
		assert.Len(t, list.Franchises, 2, "bad paging falls back to the defaults")
	})

	t.Run("oversized paging", func(t *testing.T) {
		list, err := f.svc.ListFranchises(ctx, f.diner, 0, math.MaxInt, "*")
		require.NoError(t, err, "limit is capped instead of overflowing")
		assert.Len(t, list.Franchises, 2)
		assert.False(t, list.More)

		_, err = f.svc.ListFranchises(ctx, f.diner, math.MaxInt, 10, "*")
		assert.Equal(t, apperr.BadRequest("page out of range"), err)
	})
}

func TestGetUserFranchises(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fr := f.createFranchise(t, "pizzaPocket")

	got, err := f.svc.GetUserFranchises(ctx, f.franchisee, f.franchisee.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fr.ID, got[0].ID)
	assert.NotEmpty(t, got[0].Admins)

	got, err = f.svc.GetUserFranchises(ctx, f.admin, f.franchisee.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = f.svc.GetUserFranchises(ctx, f.diner, f.franchisee.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got, "renders as [] rather than null")
}

func TestDeleteFranchise(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fr := f.createFranchise(t, "pizzaPocket")

	assert.Equal(t, apperr.Forbidden("unable to delete a franchise"), f.svc.DeleteFranchise(ctx, f.franchisee, fr.ID))

	require.NoError(t, f.svc.DeleteFranchise(ctx, f.admin, fr.ID))
	_, err := f.store.GetFranchise(ctx, fr.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	u, err := f.store.GetUserByID(ctx, f.franchisee.ID)
	require.NoError(t, err)
	assert.NotContains(t, u.Roles, domain.UserRole{Role: domain.RoleFranchisee, ObjectID: fr.ID})
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fr := f.createFranchise(t, "pizzaPocket")

	t.Run("franchise admin creates and deletes", func(t *testing.T) {
		s, err := f.svc.CreateStore(ctx, f.franchisee, fr.ID, domain.CreateStoreRequest{Name: "Lehi"})
		require.NoError(t, err)
		assert.Equal(t, domain.Store{ID: s.ID, FranchiseID: fr.ID, Name: "Lehi"}, s)

		require.NoError(t, f.svc.DeleteStore(ctx, f.franchisee, fr.ID, s.ID))
		_, err = f.store.GetStore(ctx, fr.ID, s.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("diner is forbidden", func(t *testing.T) {
		_, err := f.svc.CreateStore(ctx, f.diner, fr.ID, domain.CreateStoreRequest{Name: "Orem"})
		assert.Equal(t, apperr.Forbidden("unable to create a store"), err)

		s, err := f.svc.CreateStore(ctx, f.admin, fr.ID, domain.CreateStoreRequest{Name: "Provo"})
		require.NoError(t, err)
		assert.Equal(t, apperr.Forbidden("unable to delete a store"), f.svc.DeleteStore(ctx, f.diner, fr.ID, s.ID))
	})

	t.Run("unknown franchise", func(t *testing.T) {
		_, err := f.svc.CreateStore(ctx, f.admin, 9999, domain.CreateStoreRequest{Name: "Nowhere"})
		assert.Equal(t, apperr.NotFound("unknown franchise"), err)

		_, err = f.svc.CreateStore(ctx, f.franchisee, 9999, domain.CreateStoreRequest{Name: "Nowhere"})
		assert.Equal(t, apperr.Forbidden("unable to create a store"), err)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := f.svc.CreateStore(ctx, f.admin, fr.ID, domain.CreateStoreRequest{Name: " "})
		assert.Equal(t, apperr.BadRequest("store name is required"), err)
	})
}
