package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) TokenRepositoryInterface {
	return &TokenRepository{db: db}
}

func (tr *TokenRepository) AddToken(ctx context.Context, signature string, userID int64, expiresAt time.Time) error {
	var exp *time.Time
	if !expiresAt.IsZero() {
		exp = &expiresAt
	}
	_, err := tr.db.Exec(ctx, `
		INSERT INTO auth (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`, signature, userID, exp)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (tr *TokenRepository) HasToken(ctx context.Context, signature string) (bool, error) {
	var ok bool
	err := tr.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM auth
			WHERE token = $1 AND (expires_at IS NULL OR expires_at > NOW())
		)
	`, signature).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to look up token: %w", err)
	}
	return ok, nil
}

func (tr *TokenRepository) DeleteToken(ctx context.Context, signature string) error {
	if _, err := tr.db.Exec(ctx, `DELETE FROM auth WHERE token = $1`, signature); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
