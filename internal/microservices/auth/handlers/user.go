package handlers

import (
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/auth/service"
)

type UserHandler struct {
	service service.UserServiceInterface
}

func NewUserHandler(s service.UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

func (uh *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, httpx.UserFrom(r.Context()).User)
}

func (uh *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	// a malformed id can never name the caller
	id, _ := httpx.PathID(r, "userId")

	var req domain.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp, err := uh.service.UpdateUser(r.Context(), httpx.UserFrom(r.Context()), id, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (uh *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	httpx.WriteMessage(w, http.StatusOK, "not implemented")
}

type userList struct {
	Message string        `json:"message"`
	Users   []domain.User `json:"users"`
	More    bool          `json:"more"`
}

func (uh *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, userList{Message: "not implemented", Users: []domain.User{}})
}
