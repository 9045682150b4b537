package service

import (
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/microservices/order/factory"
	"jwt-pizza-service/internal/repository"
)

type Service struct {
	MenuService  MenuServiceInterface
	OrderService OrderServiceInterface
}

func New(repo *repository.Repository, fulfiller factory.FulfillerInterface, publisher EventPublisher, m *metrics.Metrics, listPerPage int) *Service {
	return &Service{
		MenuService:  NewMenuService(repo.Menu),
		OrderService: NewOrderService(repo, fulfiller, publisher, m, listPerPage),
	}
}
