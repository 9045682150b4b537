package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jwt-pizza-service/internal/domain"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

func (or *OrderRepository) AddOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1. Insert order
	err = tx.QueryRow(ctx, `
		INSERT INTO diner_order (diner_id, franchise_id, store_id, date)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, date
	`, order.DinerID, order.FranchiseID, order.StoreID).Scan(&order.ID, &order.Date)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	// 2. Insert order items
	for i := range order.Items {
		item := &order.Items[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO order_item (order_id, menu_id, description, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, order.ID, item.MenuID, item.Description, item.Price).Scan(&item.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("failed to insert order item %d: %w", item.MenuID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

func (or *OrderRepository) GetOrders(ctx context.Context, dinerID int64, limit, offset int) ([]domain.Order, error) {
	rows, err := or.db.Query(ctx, `
		SELECT id, franchise_id, store_id, date FROM diner_order
		WHERE diner_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3
	`, dinerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		o := domain.Order{DinerID: dinerID, Items: []domain.OrderItem{}}
		err := row.Scan(&o.ID, &o.FranchiseID, &o.StoreID, &o.Date)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	itemRows, err := or.db.Query(ctx, `
		SELECT id, order_id, menu_id, description, price FROM order_item
		WHERE order_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			it      domain.OrderItem
			orderID int64
		)
		if err := itemRows.Scan(&it.ID, &orderID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return orders, nil
}
