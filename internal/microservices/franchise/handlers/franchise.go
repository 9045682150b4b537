package handlers

import (
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/franchise/service"
)

type FranchiseHandler struct {
	service service.FranchiseServiceInterface
}

func NewFranchiseHandler(s service.FranchiseServiceInterface) *FranchiseHandler {
	return &FranchiseHandler{service: s}
}

func (fh *FranchiseHandler) ListFranchises(w http.ResponseWriter, r *http.Request) {
	list, err := fh.service.ListFranchises(r.Context(), httpx.UserFrom(r.Context()),
		httpx.QueryInt(r, "page", 0),
		httpx.QueryInt(r, "limit", 10),
		r.URL.Query().Get("name"),
	)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (fh *FranchiseHandler) GetUserFranchises(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PathID(r, "userId")
	franchises, err := fh.service.GetUserFranchises(r.Context(), httpx.UserFrom(r.Context()), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, franchises)
}

func (fh *FranchiseHandler) CreateFranchise(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFranchiseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f, err := fh.service.CreateFranchise(r.Context(), httpx.UserFrom(r.Context()), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, f)
}

func (fh *FranchiseHandler) DeleteFranchise(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.PathID(r, "franchiseId")
	if err := fh.service.DeleteFranchise(r.Context(), httpx.UserFrom(r.Context()), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "franchise deleted")
}

func (fh *FranchiseHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, _ := httpx.PathID(r, "franchiseId")
	var req domain.CreateStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	s, err := fh.service.CreateStore(r.Context(), httpx.UserFrom(r.Context()), franchiseID, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (fh *FranchiseHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	franchiseID, _ := httpx.PathID(r, "franchiseId")
	storeID, _ := httpx.PathID(r, "storeId")
	if err := fh.service.DeleteStore(r.Context(), httpx.UserFrom(r.Context()), franchiseID, storeID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "store deleted")
}
