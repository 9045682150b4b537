// Package app assembles the pizza service: repositories, microservice
// routes, middleware and the HTTP server.
package app

import (
	"context"
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/auth"
	authhandlers "jwt-pizza-service/internal/microservices/auth/handlers"
	authservice "jwt-pizza-service/internal/microservices/auth/service"
	"jwt-pizza-service/internal/microservices/franchise"
	franchisehandlers "jwt-pizza-service/internal/microservices/franchise/handlers"
	franchiseservice "jwt-pizza-service/internal/microservices/franchise/service"
	"jwt-pizza-service/internal/microservices/order"
	"jwt-pizza-service/internal/microservices/order/factory"
	orderhandlers "jwt-pizza-service/internal/microservices/order/handlers"
	orderservice "jwt-pizza-service/internal/microservices/order/service"
	"jwt-pizza-service/internal/repository"
)

// Version is stamped at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	Metrics   *metrics.Metrics
	Fulfiller factory.FulfillerInterface
	Publisher orderservice.EventPublisher
	// DB is nil when the service runs on the in-memory store.
	DB Pinger
	// Broker is nil when no message broker is configured.
	Broker Pinger
}

type App struct {
	Handler http.Handler
	Auth    *authservice.Service

	cfg *config.Config
	log *logger.Logger
}

func New(d Deps) *App {
	lg := logger.New("pizza-service")

	authSvc := authservice.New(d.Repo, d.Config, d.Metrics)
	authH := authhandlers.New(authSvc)
	franchiseH := franchisehandlers.New(franchiseservice.New(d.Repo))
	orderH := orderhandlers.New(orderservice.New(d.Repo, d.Fulfiller, d.Publisher, d.Metrics, d.Config.Database.ListPerPage))

	limiter := httpx.NewIPRateLimiter(d.Config.RateLimit.AuthRPS, d.Config.RateLimit.AuthBurst)

	mux := http.NewServeMux()
	auth.Routes(mux, authH, limiter)
	franchise.Routes(mux, franchiseH)
	order.Routes(mux, orderH)

	mux.HandleFunc("GET /{$}", welcome)
	mux.HandleFunc("GET /api/docs", docs(d.Config))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /readyz", ready(d.DB, d.Broker))
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "unknown endpoint")
	})

	h := httpx.Chain(mux,
		httpx.Recover(),
		httpx.RequestLogging(lg),
		httpx.Instrument(d.Metrics),
		httpx.CORS(),
		httpx.LimitBody(d.Config.HTTP.MaxBodyBytes),
		authH.AuthHandler.SetAuthUser,
	)

	return &App{Handler: h, Auth: authSvc, cfg: d.Config, log: lg}
}

// EnsureAdmin creates the configured admin account unless its email is
// already registered.
func (a *App) EnsureAdmin(ctx context.Context) error {
	admin := a.cfg.Admin
	if admin.Email == "" {
		return nil
	}
	created, err := a.Auth.AuthService.EnsureUser(ctx, domain.User{
		Name:  admin.Name,
		Email: admin.Email,
		Roles: []domain.UserRole{{Role: domain.RoleAdmin}},
	}, admin.Password)
	if err != nil {
		return err
	}
	if created {
		a.log.Info("admin_created", map[string]any{"email": admin.Email})
	}
	return nil
}

type welcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

func welcome(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, welcomeResponse{Message: "welcome to JWT Pizza", Version: Version})
}

type docsConfig struct {
	Factory string `json:"factory"`
	DB      string `json:"db"`
}

type docsResponse struct {
	Version   string               `json:"version"`
	Endpoints []domain.EndpointDoc `json:"endpoints"`
	Config    docsConfig           `json:"config"`
}

func docs(cfg *config.Config) http.HandlerFunc {
	var endpoints []domain.EndpointDoc
	endpoints = append(endpoints, auth.Docs()...)
	endpoints = append(endpoints, order.Docs()...)
	endpoints = append(endpoints, franchise.Docs()...)

	db := cfg.Database.Host
	if !cfg.Database.Enabled() {
		db = "memory"
	}
	resp := docsResponse{
		Version:   Version,
		Endpoints: endpoints,
		Config:    docsConfig{Factory: cfg.Factory.URL, DB: db},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

func ready(db, broker Pinger) http.HandlerFunc {
	checks := []struct {
		name    string
		pinger  Pinger
		message string
	}{
		{"database", db, "database unavailable"},
		{"broker", broker, "message broker unavailable"},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if c.pinger == nil {
				continue
			}
			if err := c.pinger.Ping(r.Context()); err != nil {
				httpx.Logger(r.Context()).Error("readiness_failed", err, map[string]any{"dependency": c.name})
				httpx.WriteMessage(w, http.StatusServiceUnavailable, c.message)
				return
			}
		}
		httpx.WriteMessage(w, http.StatusOK, "ready")
	}
}
