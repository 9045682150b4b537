package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/order/factory"
	"jwt-pizza-service/internal/repository"
)

const publishTimeout = 5 * time.Second

// EventPublisher receives an event for every order the factory accepted.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev domain.OrderEvent) error
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, domain.OrderEvent) error { return nil }

// FulfillmentError reports that an order was stored but the factory did not
// accept it.
type FulfillmentError struct {
	ReportURL string
	Err       error
}

func (e *FulfillmentError) Error() string { return "Failed to fulfill order at factory" }
func (e *FulfillmentError) Unwrap() error { return e.Err }

type OrderServiceInterface interface {
	// GetOrders returns one page (counted from 1) of the caller's orders.
	GetOrders(ctx context.Context, caller *domain.AuthUser, page int) (domain.OrderHistory, error)
	CreateOrder(ctx context.Context, caller *domain.AuthUser, req domain.CreateOrderRequest) (domain.OrderReceipt, error)
}

type OrderService struct {
	orders      repository.OrderRepositoryInterface
	menu        repository.MenuRepositoryInterface
	franchises  repository.FranchiseRepositoryInterface
	factory     factory.FulfillerInterface
	publisher   EventPublisher
	metrics     *metrics.Metrics
	listPerPage int
	now         func() time.Time
	log         *logger.Logger
}

func NewOrderService(
	repo *repository.Repository,
	fulfiller factory.FulfillerInterface,
	publisher EventPublisher,
	m *metrics.Metrics,
	listPerPage int,
) OrderServiceInterface {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if listPerPage <= 0 {
		listPerPage = 10
	}
	return &OrderService{
		orders:      repo.Orders,
		menu:        repo.Menu,
		franchises:  repo.Franchises,
		factory:     fulfiller,
		publisher:   publisher,
		metrics:     m,
		listPerPage: listPerPage,
		now:         time.Now,
		log:         logger.New("order"),
	}
}

func (o *OrderService) GetOrders(ctx context.Context, caller *domain.AuthUser, page int) (domain.OrderHistory, error) {
	if caller == nil {
		return domain.OrderHistory{}, apperr.Unauthorized()
	}
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt32/o.listPerPage {
		return domain.OrderHistory{}, apperr.BadRequest("page out of range")
	}

	orders, err := o.orders.GetOrders(ctx, caller.ID, o.listPerPage, (page-1)*o.listPerPage)
	if err != nil {
		return domain.OrderHistory{}, fmt.Errorf("failed to get orders for diner %d: %w", caller.ID, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return domain.OrderHistory{DinerID: caller.ID, Orders: orders, Page: page}, nil
}

// CreateOrder stores the order and hands it to the factory. When the factory
// does not accept it the order stays stored and a *FulfillmentError is
// returned.
func (o *OrderService) CreateOrder(ctx context.Context, caller *domain.AuthUser, req domain.CreateOrderRequest) (domain.OrderReceipt, error) {
	if caller == nil {
		return domain.OrderReceipt{}, apperr.Unauthorized()
	}
	if len(req.Items) == 0 {
		return domain.OrderReceipt{}, apperr.BadRequest("order must contain at least one item")
	}

	if _, err := o.franchises.GetStore(ctx, req.FranchiseID, req.StoreID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.OrderReceipt{}, apperr.NotFound("unknown store")
		}
		return domain.OrderReceipt{}, fmt.Errorf("failed to look up store %d: %w", req.StoreID, err)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if _, err := o.menu.GetMenuItem(ctx, it.MenuID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.OrderReceipt{}, apperr.NotFound(fmt.Sprintf("unknown menu item %d", it.MenuID))
			}
			return domain.OrderReceipt{}, fmt.Errorf("failed to look up menu item %d: %w", it.MenuID, err)
		}
		items = append(items, domain.OrderItem{MenuID: it.MenuID, Description: it.Description, Price: it.Price})
	}

	order, err := o.orders.AddOrder(ctx, domain.Order{
		DinerID:     caller.ID,
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       items,
	})
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("failed to save order: %w", err)
	}

	start := o.now()
	resp, err := o.factory.Fulfill(ctx, domain.FactoryOrderRequest{
		Diner: domain.FactoryDiner{ID: caller.ID, Name: caller.Name, Email: caller.Email},
		Order: order,
	})
	o.metrics.ObserveFactory(o.now().Sub(start))
	if err != nil {
		o.metrics.PizzaFailure()
		o.log.Error("factory_failed", err, map[string]any{"order_id": order.ID, "diner_id": caller.ID})
		return domain.OrderReceipt{}, &FulfillmentError{ReportURL: resp.ReportURL, Err: err}
	}

	o.metrics.PizzasSold(len(order.Items), order.Total())
	o.log.Info("order_fulfilled", map[string]any{
		"order_id": order.ID,
		"diner_id": caller.ID,
		"items":    len(order.Items),
		"total":    order.Total(),
	})
	o.publish(ctx, order, resp.JWT)

	return domain.OrderReceipt{Order: order, ReportURL: resp.ReportURL, JWT: resp.JWT}, nil
}

// publish emits order.fulfilled. Failures are logged; the diner already has
// a pizza.
func (o *OrderService) publish(ctx context.Context, order domain.Order, factoryJWT string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := domain.OrderEvent{
		Type:        domain.EventOrderFulfilled,
		OrderID:     order.ID,
		DinerID:     order.DinerID,
		FranchiseID: order.FranchiseID,
		StoreID:     order.StoreID,
		ItemCount:   len(order.Items),
		Total:       order.Total(),
		FactoryJWT:  factoryJWT,
		OccurredAt:  o.now().UTC(),
	}
	if err := o.publisher.PublishOrderEvent(ctx, ev); err != nil {
		o.log.Error("publish_failed", err, map[string]any{"order_id": order.ID})
	}
}
