package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jwt-pizza-service/internal/domain"
)

type MenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

func (mr *MenuRepository) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := mr.db.Query(ctx, `SELECT id, title, description, image, price FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanMenuItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan menu: %w", err)
	}
	return items, nil
}

func (mr *MenuRepository) GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	rows, err := mr.db.Query(ctx, `SELECT id, title, description, image, price FROM menu WHERE id = $1`, id)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to query menu item: %w", err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		return domain.MenuItem{}, wrapLookup("menu item", mapPgError(err))
	}
	return item, nil
}

func (mr *MenuRepository) AddMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	err := mr.db.QueryRow(ctx, `
		INSERT INTO menu (title, description, image, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.Title, item.Description, item.Image, item.Price).Scan(&item.ID)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return item, nil
}

func scanMenuItem(row pgx.CollectableRow) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price)
	return m, err
}
