package auth

import (
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/auth/handlers"
)

// Routes mounts the auth and user endpoints. Register and login go through
// limiter.
func Routes(mux *http.ServeMux, h *handlers.Handler, limiter *httpx.IPRateLimiter) {
	mux.HandleFunc("POST /api/auth", limiter.Limit(h.AuthHandler.Register))
	mux.HandleFunc("PUT /api/auth", limiter.Limit(h.AuthHandler.Login))
	mux.HandleFunc("DELETE /api/auth", httpx.RequireAuth(h.AuthHandler.Logout))

	mux.HandleFunc("GET /api/user/me", httpx.RequireAuth(h.UserHandler.GetMe))
	mux.HandleFunc("PUT /api/user/{userId}", httpx.RequireAuth(h.UserHandler.UpdateUser))
	mux.HandleFunc("DELETE /api/user/{userId}", httpx.RequireAuth(h.UserHandler.DeleteUser))
	mux.HandleFunc("GET /api/user", httpx.RequireAuth(h.UserHandler.ListUsers))
	mux.HandleFunc("GET /api/user/{$}", httpx.RequireAuth(h.UserHandler.ListUsers))
}

func Docs() []domain.EndpointDoc {
	sample := domain.User{ID: 2, Name: "pizza diner", Email: "d@jwt.com", Roles: []domain.UserRole{{Role: domain.RoleDiner}}}
	return []domain.EndpointDoc{
		{
			Method:      "POST",
			Path:        "/api/auth",
			Description: "Register a new user",
			Example:     `curl -X POST localhost:3000/api/auth -d '{"name":"pizza diner", "email":"d@jwt.com", "password":"diner"}' -H 'Content-Type: application/json'`,
			Response:    domain.AuthResponse{User: sample, Token: "tttttt"},
		},
		{
			Method:      "PUT",
			Path:        "/api/auth",
			Description: "Login existing user",
			Example:     `curl -X PUT localhost:3000/api/auth -d '{"email":"a@jwt.com", "password":"admin"}' -H 'Content-Type: application/json'`,
			Response:    domain.AuthResponse{User: domain.User{ID: 1, Name: "常用名字", Email: "a@jwt.com", Roles: []domain.UserRole{{Role: domain.RoleAdmin}}}, Token: "tttttt"},
		},
		{
			Method:       "DELETE",
			Path:         "/api/auth",
			RequiresAuth: true,
			Description:  "Logout a user",
			Example:      `curl -X DELETE localhost:3000/api/auth -H 'Authorization: Bearer tttttt'`,
			Response:     domain.MessageResponse{Message: "logout successful"},
		},
		{
			Method:       "GET",
			Path:         "/api/user/me",
			RequiresAuth: true,
			Description:  "Get authenticated user",
			Example:      `curl -X GET localhost:3000/api/user/me -H 'Authorization: Bearer tttttt'`,
			Response:     sample,
		},
		{
			Method:       "PUT",
			Path:         "/api/user/:userId",
			RequiresAuth: true,
			Description:  "Update user",
			Example:      `curl -X PUT localhost:3000/api/user/1 -d '{"name":"常用名字", "email":"a@jwt.com", "password":"admin"}' -H 'Content-Type: application/json' -H 'Authorization: Bearer tttttt'`,
			Response:     domain.AuthResponse{User: domain.User{ID: 1, Name: "常用名字", Email: "a@jwt.com", Roles: []domain.UserRole{{Role: domain.RoleAdmin}}}, Token: "tttttt"},
		},
		{
			Method:       "DELETE",
			Path:         "/api/user/:userId",
			RequiresAuth: true,
			Description:  "Delete user",
			Example:      `curl -X DELETE localhost:3000/api/user/1 -H 'Authorization: Bearer tttttt'`,
			Response:     domain.MessageResponse{Message: "not implemented"},
		},
		{
			Method:       "GET",
			Path:         "/api/user?page=1&limit=10&name=*",
			RequiresAuth: true,
			Description:  "Gets a list of users",
			Example:      `curl -X GET localhost:3000/api/user -H 'Authorization: Bearer tttttt'`,
			Response:     map[string]any{"message": "not implemented", "users": []domain.User{}, "more": false},
		},
	}
}
