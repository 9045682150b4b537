package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

func newTestServices(t *testing.T) (*repository.MemoryStore, TokenServiceInterface, AuthServiceInterface, UserServiceInterface) {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens := NewTokenService(store, "secret", 0)
	return store, tokens,
		NewAuthService(store, tokens, bcrypt.MinCost, metrics.New()),
		NewUserService(store, tokens, bcrypt.MinCost)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	_, tokens, auth, _ := newTestServices(t)

	resp, err := auth.Register(ctx, domain.RegisterRequest{Name: "pizza diner", Email: "reg@test.com", Password: "a"})
	require.NoError(t, err)
	assert.Equal(t, "pizza diner", resp.User.Name)
	assert.Equal(t, []domain.UserRole{{Role: domain.RoleDiner}}, resp.User.Roles)
	assert.NotNil(t, tokens.Authenticate(ctx, resp.Token))

	_, err = auth.Register(ctx, domain.RegisterRequest{Name: "again", Email: "reg@test.com", Password: "b"})
	assert.Equal(t, apperr.Conflict("user already exists"), err)

	for _, req := range []domain.RegisterRequest{
		{Email: "x@test.com", Password: "a"},
		{Name: "x", Password: "a"},
		{Name: "x", Email: "x@test.com"},
	} {
		_, err := auth.Register(ctx, req)
		assert.Equal(t, apperr.BadRequest("name, email, and password are required"), err)
	}
}

func TestAuthService_LoginLogout(t *testing.T) {
	ctx := context.Background()
	_, tokens, auth, _ := newTestServices(t)

	_, err := auth.Register(ctx, domain.RegisterRequest{Name: "d", Email: "d@test.com", Password: "pw"})
	require.NoError(t, err)

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "d@test.com", Password: "pw"})
	require.NoError(t, err)
	caller := tokens.Authenticate(ctx, resp.Token)
	require.NotNil(t, caller)

	_, err = auth.Login(ctx, domain.LoginRequest{Email: "d@test.com", Password: "wrong"})
	assert.Equal(t, apperr.NotFound("unknown user"), err)
	_, err = auth.Login(ctx, domain.LoginRequest{Email: "nobody@test.com", Password: "pw"})
	assert.Equal(t, apperr.NotFound("unknown user"), err)

	require.NoError(t, auth.Logout(ctx, caller))
	assert.Nil(t, tokens.Authenticate(ctx, resp.Token))

	assert.Equal(t, apperr.Unauthorized(), auth.Logout(ctx, nil))
}

func TestAuthService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	_, _, auth, _ := newTestServices(t)
	admin := domain.User{Name: "常用名字", Email: "a@jwt.com", Roles: []domain.UserRole{{Role: domain.RoleAdmin}}}

	created, err := auth.EnsureUser(ctx, admin, "admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = auth.EnsureUser(ctx, admin, "admin")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "a@jwt.com", Password: "admin"})
	require.NoError(t, err)
	assert.True(t, resp.User.HasRole(domain.RoleAdmin))
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	store, tokens, auth, users := newTestServices(t)

	reg, err := auth.Register(ctx, domain.RegisterRequest{Name: "d", Email: "d@test.com", Password: "pw"})
	require.NoError(t, err)
	self := tokens.Authenticate(ctx, reg.Token)
	require.NotNil(t, self)

	other, err := auth.Register(ctx, domain.RegisterRequest{Name: "o", Email: "o@test.com", Password: "pw"})
	require.NoError(t, err)

	_, err = auth.EnsureUser(ctx, domain.User{Name: "admin", Email: "a@jwt.com", Roles: []domain.UserRole{{Role: domain.RoleAdmin}}}, "admin")
	require.NoError(t, err)
	adminLogin, err := auth.Login(ctx, domain.LoginRequest{Email: "a@jwt.com", Password: "admin"})
	require.NoError(t, err)
	admin := tokens.Authenticate(ctx, adminLogin.Token)

	t.Run("self updates provided fields", func(t *testing.T) {
		resp, err := users.UpdateUser(ctx, self, self.ID, domain.UpdateUserRequest{Name: "renamed", Password: "new"})
		require.NoError(t, err)
		assert.Equal(t, "renamed", resp.User.Name)
		assert.Equal(t, "d@test.com", resp.User.Email)
		assert.Equal(t, "renamed", tokens.Authenticate(ctx, resp.Token).Name)

		_, err = auth.Login(ctx, domain.LoginRequest{Email: "d@test.com", Password: "new"})
		assert.NoError(t, err)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, self, other.User.ID, domain.UpdateUserRequest{Name: "hacked"})
		assert.Equal(t, apperr.Forbidden("unauthorized"), err)

		u, err := store.GetUserByID(ctx, other.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "o", u.Name)
	})

	t.Run("non-numeric id is never self", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, self, 0, domain.UpdateUserRequest{Name: "x"})
		assert.Equal(t, apperr.Forbidden("unauthorized"), err)
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		resp, err := users.UpdateUser(ctx, admin, other.User.ID, domain.UpdateUserRequest{Email: "o2@test.com"})
		require.NoError(t, err)
		assert.Equal(t, "o2@test.com", resp.User.Email)
	})

	t.Run("admin on unknown user", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, admin, 9999, domain.UpdateUserRequest{Name: "ghost"})
		assert.Equal(t, apperr.NotFound("unknown user"), err)
	})

	t.Run("email collision", func(t *testing.T) {
		_, err := users.UpdateUser(ctx, self, self.ID, domain.UpdateUserRequest{Email: "a@jwt.com"})
		assert.Equal(t, apperr.Conflict("user already exists"), err)
	})
}
