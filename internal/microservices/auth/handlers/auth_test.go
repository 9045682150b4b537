package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/auth/service"
	"jwt-pizza-service/internal/repository"
)

func newAuthHandler() *AuthHandler {
	store := repository.NewMemoryStore()
	tokens := service.NewTokenService(store, "secret", 0)
	return NewAuthHandler(service.NewAuthService(store, tokens, bcrypt.MinCost, nil))
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def.ghi": "abc.def.ghi",
		"bearer abc":         "abc",
		"Basic abc":          "",
		"abc":                "",
		"":                   "",
	}
	for header, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(r), header)
	}
}

func TestRegisterThenSetAuthUser(t *testing.T) {
	ah := newAuthHandler()

	rec := httptest.NewRecorder()
	ah.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"name":"pizza diner","email":"reg@test.com","password":"a"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	var seen *domain.AuthUser
	h := ah.SetAuthUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.UserFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, resp.User.ID, seen.ID)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token+"x")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen, "a tampered token leaves the request anonymous")
}

func TestRegister_BadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newAuthHandler().Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid JSON body"}`, rec.Body.String())
}
