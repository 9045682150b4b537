package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/order/factory"
	"jwt-pizza-service/internal/repository"
)

var jwtPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]*\.[a-zA-Z0-9\-_]*\.[a-zA-Z0-9\-_]*$`)

type testApp struct {
	t       *testing.T
	srv     *httptest.Server
	repo    *repository.Repository
	factory *httptest.Server
	// failFactory makes the stub factory answer 500.
	failFactory atomic.Bool
	admin       string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger.SetOutput(io.Discard)

	ta := &testApp{t: t, repo: repository.NewMemory()}
	ta.factory = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ta.failFactory.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"chaos","reportUrl":"https://report/chaos"}`))
			return
		}
		_, _ = w.Write([]byte(`{"jwt":"factory.signed.jwt","reportUrl":"https://report/ok"}`))
	}))
	t.Cleanup(ta.factory.Close)

	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.RateLimit.AuthRPS = 0
	cfg.Factory.URL = ta.factory.URL
	cfg.Factory.RetryMax = 0
	cfg.Admin = config.AdminConfig{Name: "常用名字", Email: "a@jwt.com", Password: "admin"}

	a := New(Deps{
		Config:    &cfg,
		Repo:      ta.repo,
		Metrics:   metrics.New(),
		Fulfiller: factory.NewClient(cfg.Factory),
	})
	require.NoError(t, a.EnsureAdmin(context.Background()))

	ta.srv = httptest.NewServer(a.Handler)
	t.Cleanup(ta.srv.Close)

	ta.admin = ta.login("a@jwt.com", "admin")
	return ta
}

func (ta *testApp) do(method, path, token string, body any, out any) int {
	ta.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ta.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ta.srv.URL+path, rdr)
	require.NoError(ta.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.srv.Client().Do(req)
	require.NoError(ta.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(ta.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ta *testApp) login(email, password string) string {
	ta.t.Helper()
	var res domain.AuthResponse
	code := ta.do(http.MethodPut, "/api/auth", "", domain.LoginRequest{Email: email, Password: password}, &res)
	require.Equal(ta.t, http.StatusOK, code)
	require.Regexp(ta.t, jwtPattern, res.Token)
	return res.Token
}

func (ta *testApp) register(name, email, password string) domain.AuthResponse {
	ta.t.Helper()
	var res domain.AuthResponse
	code := ta.do(http.MethodPost, "/api/auth", "", domain.RegisterRequest{Name: name, Email: email, Password: password}, &res)
	require.Equal(ta.t, http.StatusOK, code)
	require.Regexp(ta.t, jwtPattern, res.Token)
	return res
}

func TestWelcomeDocsAndUnknown(t *testing.T) {
	ta := newTestApp(t)

	var welcome welcomeResponse
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/", "", nil, &welcome))
	assert.Equal(t, "welcome to JWT Pizza", welcome.Message)
	assert.Equal(t, Version, welcome.Version)

	var d docsResponse
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/docs", "", nil, &d))
	assert.Equal(t, ta.factory.URL, d.Config.Factory)
	assert.Equal(t, "memory", d.Config.DB)
	assert.NotEmpty(t, d.Endpoints)

	var msg domain.MessageResponse
	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/api/nope", "", nil, &msg))
	assert.Equal(t, "unknown endpoint", msg.Message)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/healthz", "", nil, nil))
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/readyz", "", nil, nil))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestReadyz(t *testing.T) {
	logger.SetOutput(io.Discard)
	tests := []struct {
		name     string
		db       Pinger
		broker   Pinger
		wantCode int
		wantBody string
	}{
		{"memory store without broker", nil, nil, http.StatusOK, `{"message":"ready"}`},
		{"all up", okPinger{}, okPinger{}, http.StatusOK, `{"message":"ready"}`},
		{"database down", failingPinger{}, okPinger{}, http.StatusServiceUnavailable, `{"message":"database unavailable"}`},
		{"broker down", okPinger{}, failingPinger{}, http.StatusServiceUnavailable, `{"message":"message broker unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ready(tt.db, tt.broker)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAuthFlow(t *testing.T) {
	ta := newTestApp(t)

	reg := ta.register("pizza diner", "d@jwt.com", "diner")
	assert.Equal(t, []domain.UserRole{{Role: domain.RoleDiner}}, reg.User.Roles)

	var msg domain.MessageResponse
	assert.Equal(t, http.StatusConflict, ta.do(http.MethodPost, "/api/auth", "", domain.RegisterRequest{Name: "x", Email: "d@jwt.com", Password: "y"}, &msg))
	assert.Equal(t, "user already exists", msg.Message)

	assert.Equal(t, http.StatusBadRequest, ta.do(http.MethodPost, "/api/auth", "", domain.RegisterRequest{Email: "e@jwt.com"}, &msg))
	assert.Equal(t, "name, email, and password are required", msg.Message)

	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodPut, "/api/auth", "", domain.LoginRequest{Email: "d@jwt.com", Password: "wrong"}, &msg))
	assert.Equal(t, "unknown user", msg.Message)

	var me domain.User
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/user/me", reg.Token, nil, &me))
	assert.Equal(t, "d@jwt.com", me.Email)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodDelete, "/api/auth", reg.Token, nil, &msg))
	assert.Equal(t, "logout successful", msg.Message)

	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodGet, "/api/user/me", reg.Token, nil, &msg))
	assert.Equal(t, "unauthorized", msg.Message)
}

func TestUserRoutes(t *testing.T) {
	ta := newTestApp(t)
	reg := ta.register("pizza diner", "d@jwt.com", "a")
	path := "/api/user/" + strconv.FormatInt(reg.User.ID, 10)

	var updated domain.AuthResponse
	code := ta.do(http.MethodPut, path, reg.Token, domain.UpdateUserRequest{Name: "UpdatedName", Email: "d@jwt.com", Password: "a"}, &updated)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "UpdatedName", updated.User.Name)
	assert.Equal(t, reg.User.ID, updated.User.ID)
	assert.Regexp(t, jwtPattern, updated.Token)

	var msg domain.MessageResponse
	assert.Equal(t, http.StatusForbidden, ta.do(http.MethodPut, "/api/user/badId", reg.Token, domain.UpdateUserRequest{Name: "x"}, &msg))
	assert.Equal(t, "unauthorized", msg.Message)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodDelete, path, reg.Token, nil, &msg))
	assert.Equal(t, "not implemented", msg.Message)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/user/", reg.Token, nil, &msg))
	assert.Equal(t, "not implemented", msg.Message)
}

func TestFranchiseRoutes(t *testing.T) {
	ta := newTestApp(t)
	franchisee := ta.register("pizza franchisee", "f@jwt.com", "franchisee")

	var fr domain.Franchise
	code := ta.do(http.MethodPost, "/api/franchise", ta.admin, domain.CreateFranchiseRequest{
		Name:   "pizzaPocket",
		Admins: []domain.AdminEmailRef{{Email: "f@jwt.com"}},
	}, &fr)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pizzaPocket", fr.Name)

	var msg domain.MessageResponse
	assert.Equal(t, http.StatusForbidden, ta.do(http.MethodPost, "/api/franchise", franchisee.Token, domain.CreateFranchiseRequest{Name: "mine"}, &msg))
	assert.Equal(t, "unable to create a franchise", msg.Message)

	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodPost, "/api/franchise", "", domain.CreateFranchiseRequest{Name: "anon"}, &msg))

	storePath := "/api/franchise/" + strconv.FormatInt(fr.ID, 10) + "/store"
	var store domain.Store
	assert.Equal(t, http.StatusOK, ta.do(http.MethodPost, storePath, franchisee.Token, domain.CreateStoreRequest{Name: "SLC"}, &store))
	assert.Equal(t, "SLC", store.Name)

	var list domain.FranchiseList
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/franchise?page=0&limit=10&name=pizza*", "", nil, &list))
	require.Len(t, list.Franchises, 1)
	assert.Equal(t, []domain.Store{{ID: store.ID, Name: "SLC"}}, list.Franchises[0].Stores)

	var mine []domain.Franchise
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/franchise/"+strconv.FormatInt(franchisee.User.ID, 10), franchisee.Token, nil, &mine))
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Stores[0].TotalRevenue)

	assert.Equal(t, http.StatusOK, ta.do(http.MethodDelete, storePath+"/"+strconv.FormatInt(store.ID, 10), franchisee.Token, nil, &msg))
	assert.Equal(t, "store deleted", msg.Message)

	frPath := "/api/franchise/" + strconv.FormatInt(fr.ID, 10)
	assert.Equal(t, http.StatusForbidden, ta.do(http.MethodDelete, frPath, franchisee.Token, nil, &msg))
	assert.Equal(t, "unable to delete a franchise", msg.Message)
	assert.Equal(t, http.StatusOK, ta.do(http.MethodDelete, frPath, ta.admin, nil, &msg))
	assert.Equal(t, "franchise deleted", msg.Message)
}

func TestOrderRoutes(t *testing.T) {
	ta := newTestApp(t)
	diner := ta.register("pizza diner", "d@jwt.com", "diner")

	var menu []domain.MenuItem
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/order/menu", "", nil, &menu))
	assert.NotNil(t, menu)
	assert.Empty(t, menu)

	veggie := domain.MenuItem{Title: "Veggie", Description: "A garden of delight", Image: "pizza1.png", Price: 0.0038}
	assert.Equal(t, http.StatusOK, ta.do(http.MethodPut, "/api/order/menu", ta.admin, veggie, &menu))
	require.Len(t, menu, 1)
	assert.Equal(t, 0.0038, menu[0].Price)

	var msg domain.MessageResponse
	assert.Equal(t, http.StatusForbidden, ta.do(http.MethodPut, "/api/order/menu", diner.Token, veggie, &msg))
	assert.Equal(t, "unable to add menu item", msg.Message)

	var fr domain.Franchise
	require.Equal(t, http.StatusOK, ta.do(http.MethodPost, "/api/franchise", ta.admin, domain.CreateFranchiseRequest{Name: "pizzaPocket"}, &fr))
	var store domain.Store
	require.Equal(t, http.StatusOK, ta.do(http.MethodPost, "/api/franchise/"+strconv.FormatInt(fr.ID, 10)+"/store", ta.admin, domain.CreateStoreRequest{Name: "SLC"}, &store))

	order := domain.CreateOrderRequest{
		FranchiseID: fr.ID,
		StoreID:     store.ID,
		Items:       []domain.CreateOrderItem{{MenuID: menu[0].ID, Description: "Veggie", Price: 0.05}},
	}

	var receipt domain.OrderReceipt
	assert.Equal(t, http.StatusOK, ta.do(http.MethodPost, "/api/order", diner.Token, order, &receipt))
	assert.Equal(t, "factory.signed.jwt", receipt.JWT)
	assert.Equal(t, "https://report/ok", receipt.ReportURL)
	assert.Equal(t, fr.ID, receipt.Order.FranchiseID)

	ta.failFactory.Store(true)
	var failure domain.OrderFailure
	assert.Equal(t, http.StatusInternalServerError, ta.do(http.MethodPost, "/api/order", diner.Token, order, &failure))
	assert.Equal(t, domain.OrderFailure{Message: "Failed to fulfill order at factory", ReportURL: "https://report/chaos"}, failure)

	var history domain.OrderHistory
	assert.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/api/order", diner.Token, nil, &history))
	assert.Equal(t, diner.User.ID, history.DinerID)
	assert.Equal(t, 1, history.Page)
	assert.Len(t, history.Orders, 2, "failed orders stay recorded")

	assert.Equal(t, http.StatusUnauthorized, ta.do(http.MethodGet, "/api/order", "", nil, &msg))

	order.StoreID = 999
	assert.Equal(t, http.StatusNotFound, ta.do(http.MethodPost, "/api/order", diner.Token, order, &msg))
	assert.Equal(t, "unknown store", msg.Message)
}

func TestCORSPreflight(t *testing.T) {
	ta := newTestApp(t)
	req, err := http.NewRequest(http.MethodOptions, ta.srv.URL+"/api/auth", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://pizza.example")
	resp, err := ta.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://pizza.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
