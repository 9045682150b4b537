package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jwt-pizza-service/internal/domain"
)

type FranchiseRepository struct {
	db *pgxpool.Pool
}

func NewFranchiseRepository(db *pgxpool.Pool) FranchiseRepositoryInterface {
	return &FranchiseRepository{db: db}
}

func (fr *FranchiseRepository) ListFranchises(ctx context.Context, f FranchiseFilter) ([]domain.Franchise, bool, error) {
	rows, err := fr.db.Query(ctx, `
		SELECT id, name FROM franchise
		WHERE name ILIKE $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, f.Name, f.Limit+1, f.Offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query franchises: %w", err)
	}
	franchises, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Franchise, error) {
		item := domain.Franchise{Stores: []domain.Store{}}
		err := row.Scan(&item.ID, &item.Name)
		return item, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan franchises: %w", err)
	}

	more := len(franchises) > f.Limit
	if more {
		franchises = franchises[:f.Limit]
	}
	if len(franchises) == 0 {
		return franchises, false, nil
	}

	ids := make([]int64, len(franchises))
	byID := make(map[int64]*domain.Franchise, len(franchises))
	for i := range franchises {
		ids[i] = franchises[i].ID
		byID[franchises[i].ID] = &franchises[i]
	}

	storeRows, err := fr.db.Query(ctx, `
		SELECT id, franchise_id, name FROM store
		WHERE franchise_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query stores: %w", err)
	}
	defer storeRows.Close()
	for storeRows.Next() {
		var (
			s           domain.Store
			franchiseID int64
		)
		if err := storeRows.Scan(&s.ID, &franchiseID, &s.Name); err != nil {
			return nil, false, fmt.Errorf("failed to scan store: %w", err)
		}
		if parent, ok := byID[franchiseID]; ok {
			parent.Stores = append(parent.Stores, s)
		}
	}
	if err := storeRows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read stores: %w", err)
	}
	return franchises, more, nil
}

func (fr *FranchiseRepository) GetFranchise(ctx context.Context, id int64) (domain.Franchise, error) {
	f := domain.Franchise{ID: id}
	if err := fr.db.QueryRow(ctx, `SELECT name FROM franchise WHERE id = $1`, id).Scan(&f.Name); err != nil {
		return domain.Franchise{}, wrapLookup("franchise", mapPgError(err))
	}

	rows, err := fr.db.Query(ctx, `
		SELECT u.id, u.name, u.email
		FROM user_role ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.object_id = $1 AND ur.role = $2
		ORDER BY u.id
	`, id, domain.RoleFranchisee)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to query franchise admins: %w", err)
	}
	f.Admins, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FranchiseAdmin, error) {
		var a domain.FranchiseAdmin
		err := row.Scan(&a.ID, &a.Name, &a.Email)
		return a, err
	})
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to scan franchise admins: %w", err)
	}

	rows, err = fr.db.Query(ctx, `
		SELECT s.id, s.name, COALESCE(SUM(oi.price), 0)
		FROM store s
		LEFT JOIN diner_order o ON o.store_id = s.id
		LEFT JOIN order_item oi ON oi.order_id = o.id
		WHERE s.franchise_id = $1
		GROUP BY s.id, s.name
		ORDER BY s.id
	`, id)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to query franchise stores: %w", err)
	}
	f.Stores, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Store, error) {
		var (
			s       domain.Store
			revenue float64
		)
		err := row.Scan(&s.ID, &s.Name, &revenue)
		s.TotalRevenue = &revenue
		return s, err
	})
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to scan franchise stores: %w", err)
	}
	return f, nil
}

func (fr *FranchiseRepository) GetFranchiseIDsByAdmin(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := fr.db.Query(ctx, `
		SELECT DISTINCT object_id FROM user_role
		WHERE user_id = $1 AND role = $2
		ORDER BY object_id
	`, userID, domain.RoleFranchisee)
	if err != nil {
		return nil, fmt.Errorf("failed to query user franchises: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan user franchises: %w", err)
	}
	return ids, nil
}

func (fr *FranchiseRepository) CreateFranchise(ctx context.Context, name string, admins []domain.FranchiseAdmin) (domain.Franchise, error) {
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	f := domain.Franchise{Name: name, Admins: admins, Stores: []domain.Store{}}
	if err = tx.QueryRow(ctx, `INSERT INTO franchise (name) VALUES ($1) RETURNING id`, name).Scan(&f.ID); err != nil {
		if errors.Is(mapPgError(err), ErrConflict) {
			return domain.Franchise{}, ErrConflict
		}
		return domain.Franchise{}, fmt.Errorf("failed to insert franchise: %w", err)
	}

	for _, a := range admins {
		if _, err = tx.Exec(ctx, `
			INSERT INTO user_role (user_id, role, object_id)
			VALUES ($1, $2, $3)
		`, a.ID, domain.RoleFranchisee, f.ID); err != nil {
			return domain.Franchise{}, fmt.Errorf("failed to insert franchisee role for %s: %w", a.Email, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Franchise{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return f, nil
}

func (fr *FranchiseRepository) DeleteFranchise(ctx context.Context, id int64) error {
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM store WHERE franchise_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete stores: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM user_role WHERE object_id = $1 AND role = $2`, id, domain.RoleFranchisee); err != nil {
		return fmt.Errorf("failed to delete franchisee roles: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM franchise WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete franchise: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (fr *FranchiseRepository) GetStore(ctx context.Context, franchiseID, storeID int64) (domain.Store, error) {
	s := domain.Store{ID: storeID, FranchiseID: franchiseID}
	err := fr.db.QueryRow(ctx, `SELECT name FROM store WHERE franchise_id = $1 AND id = $2`, franchiseID, storeID).
		Scan(&s.Name)
	if err != nil {
		return domain.Store{}, wrapLookup("store", mapPgError(err))
	}
	return s, nil
}

func (fr *FranchiseRepository) CreateStore(ctx context.Context, franchiseID int64, name string) (domain.Store, error) {
	s := domain.Store{FranchiseID: franchiseID, Name: name}
	err := fr.db.QueryRow(ctx, `
		INSERT INTO store (franchise_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, franchiseID, name).Scan(&s.ID)
	if err != nil {
		if errors.Is(mapPgError(err), ErrNotFound) {
			return domain.Store{}, ErrNotFound
		}
		return domain.Store{}, fmt.Errorf("failed to insert store: %w", err)
	}
	return s, nil
}

func (fr *FranchiseRepository) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	if _, err := fr.db.Exec(ctx, `DELETE FROM store WHERE franchise_id = $1 AND id = $2`, franchiseID, storeID); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return nil
}
