package handlers

import "jwt-pizza-service/internal/microservices/order/service"

type Handler struct {
	MenuHandler  *MenuHandler
	OrderHandler *OrderHandler
}

func New(s *service.Service) *Handler {
	return &Handler{
		MenuHandler:  NewMenuHandler(s.MenuService),
		OrderHandler: NewOrderHandler(s.OrderService),
	}
}
