package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jwt-pizza-service/internal/domain"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{db: db}
}

func (ur *UserRepository) AddUser(ctx context.Context, user domain.User, passwordHash string) (domain.User, error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`, user.Name, user.Email, passwordHash).Scan(&user.ID)
	if err != nil {
		if errors.Is(mapPgError(err), ErrConflict) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	for _, role := range user.Roles {
		if _, err = tx.Exec(ctx, `
			INSERT INTO user_role (user_id, role, object_id)
			VALUES ($1, $2, $3)
		`, user.ID, role.Role, role.ObjectID); err != nil {
			return domain.User{}, fmt.Errorf("failed to insert role %s: %w", role.Role, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if user.Roles == nil {
		user.Roles = []domain.UserRole{}
	}
	return user, nil
}

func (ur *UserRepository) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := ur.db.QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return domain.User{}, wrapLookup("user", mapPgError(err))
	}
	if u.Roles, err = ur.roles(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (ur *UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, string, error) {
	var (
		u    domain.User
		hash string
	)
	err := ur.db.QueryRow(ctx, `SELECT id, name, email, password FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &hash)
	if err != nil {
		return domain.User{}, "", wrapLookup("user", mapPgError(err))
	}
	if u.Roles, err = ur.roles(ctx, u.ID); err != nil {
		return domain.User{}, "", err
	}
	return u, hash, nil
}

func (ur *UserRepository) UpdateUser(ctx context.Context, id int64, upd UserUpdate) error {
	if upd.empty() {
		_, err := ur.GetUserByID(ctx, id)
		return err
	}

	var (
		sets []string
		args []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("name", upd.Name)
	add("email", upd.Email)
	add("password", upd.PasswordHash)
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := ur.db.Exec(ctx, query, args...)
	if err != nil {
		if errors.Is(mapPgError(err), ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (ur *UserRepository) roles(ctx context.Context, userID int64) ([]domain.UserRole, error) {
	rows, err := ur.db.Query(ctx, `SELECT role, object_id FROM user_role WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserRole, error) {
		var r domain.UserRole
		err := row.Scan(&r.Role, &r.ObjectID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan roles: %w", err)
	}
	return roles, nil
}

// wrapLookup keeps ErrNotFound comparable and adds context to anything else.
func wrapLookup(what string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
