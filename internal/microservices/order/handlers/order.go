package handlers

import (
	"errors"
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

func (oh *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	history, err := oh.service.GetOrders(r.Context(), httpx.UserFrom(r.Context()), httpx.QueryInt(r, "page", 1))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, history)
}

func (oh *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	receipt, err := oh.service.CreateOrder(r.Context(), httpx.UserFrom(r.Context()), req)
	if err != nil {
		var ferr *service.FulfillmentError
		if errors.As(err, &ferr) {
			httpx.WriteJSON(w, http.StatusInternalServerError, domain.OrderFailure{
				Message:   ferr.Error(),
				ReportURL: ferr.ReportURL,
			})
			return
		}
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, receipt)
}
