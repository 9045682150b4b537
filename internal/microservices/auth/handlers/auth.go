package handlers

import (
	"net/http"
	"strings"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/auth/service"
)

type AuthHandler struct {
	service service.AuthServiceInterface
}

func NewAuthHandler(s service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: s}
}

func (ah *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp, err := ah.service.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (ah *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp, err := ah.service.Login(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (ah *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ah.service.Logout(r.Context(), httpx.UserFrom(r.Context())); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "logout successful")
}

// SetAuthUser attaches the caller identified by the bearer token, if any.
// Requests without a valid token continue anonymously.
func (ah *AuthHandler) SetAuthUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if user := ah.service.Authenticate(r.Context(), token); user != nil {
				r = r.WithContext(httpx.WithUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
