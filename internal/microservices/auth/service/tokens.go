package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

// TokenServiceInterface issues bearer tokens and checks them against the
// server-side allow-list.
type TokenServiceInterface interface {
	Issue(ctx context.Context, user domain.User) (string, error)
	// Authenticate returns nil for any token that is not both allow-listed
	// and correctly signed.
	Authenticate(ctx context.Context, token string) *domain.AuthUser
	Revoke(ctx context.Context, token string) error
}

type userClaims struct {
	jwt.RegisteredClaims
	UserID int64             `json:"id"`
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Roles  []domain.UserRole `json:"roles"`
}

type TokenService struct {
	tokens repository.TokenRepositoryInterface
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *logger.Logger
}

func NewTokenService(tokens repository.TokenRepositoryInterface, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		tokens: tokens,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    logger.New("auth"),
	}
}

func (ts *TokenService) Issue(ctx context.Context, user domain.User) (string, error) {
	now := ts.now()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  user.Roles,
	}
	var expiresAt time.Time
	if ts.ttl > 0 {
		expiresAt = now.Add(ts.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	sig, ok := signature(token)
	if !ok {
		return "", errors.New("signed token is malformed")
	}
	if err := ts.tokens.AddToken(ctx, sig, user.ID, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func (ts *TokenService) Authenticate(ctx context.Context, token string) *domain.AuthUser {
	sig, ok := signature(token)
	if !ok {
		return nil
	}
	listed, err := ts.tokens.HasToken(ctx, sig)
	if err != nil {
		ts.log.Error("token_lookup_failed", err, nil)
		return nil
	}
	if !listed {
		return nil
	}

	var claims userClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		ts.log.Debug("token_rejected", map[string]any{"reason": err.Error()})
		return nil
	}

	roles := claims.Roles
	if roles == nil {
		roles = []domain.UserRole{}
	}
	return &domain.AuthUser{
		User:  domain.User{ID: claims.UserID, Name: claims.Name, Email: claims.Email, Roles: roles},
		Token: token,
	}
}

func (ts *TokenService) Revoke(ctx context.Context, token string) error {
	sig, ok := signature(token)
	if !ok {
		return nil
	}
	return ts.tokens.DeleteToken(ctx, sig)
}

// signature returns the third segment of a compact JWS.
func signature(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
