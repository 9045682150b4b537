package handlers

import (
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/order/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
}

func NewMenuHandler(s service.MenuServiceInterface) *MenuHandler {
	return &MenuHandler{service: s}
}

func (mh *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := mh.service.GetMenu(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}

func (mh *MenuHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	caller := httpx.UserFrom(r.Context())
	if !caller.IsRole(domain.RoleAdmin) {
		httpx.WriteMessage(w, http.StatusForbidden, "unable to add menu item")
		return
	}

	var item domain.MenuItem
	if err := httpx.DecodeJSON(r, &item); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	menu, err := mh.service.AddMenuItem(r.Context(), caller, item)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}
