package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Logout(ctx context.Context, user *domain.AuthUser) error
	Authenticate(ctx context.Context, token string) *domain.AuthUser
	// EnsureUser creates the user unless the email is already registered.
	EnsureUser(ctx context.Context, user domain.User, password string) (bool, error)
}

type AuthService struct {
	users      repository.UserRepositoryInterface
	tokens     TokenServiceInterface
	bcryptCost int
	metrics    *metrics.Metrics
	log        *logger.Logger
}

func NewAuthService(users repository.UserRepositoryInterface, tokens TokenServiceInterface, bcryptCost int, m *metrics.Metrics) AuthServiceInterface {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    m,
		log:        logger.New("auth"),
	}
}

func (as *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return domain.AuthResponse{}, apperr.BadRequest("name, email, and password are required")
	}

	hash, err := hashPassword(req.Password, as.bcryptCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	user, err := as.users.AddUser(ctx, domain.User{
		Name:  req.Name,
		Email: req.Email,
		Roles: []domain.UserRole{{Role: domain.RoleDiner}},
	}, hash)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.AuthResponse{}, apperr.Conflict("user already exists")
		}
		return domain.AuthResponse{}, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := as.tokens.Issue(ctx, user)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	as.metrics.AuthAttempt(true)
	as.log.Info("user_registered", map[string]any{"user_id": user.ID})
	return domain.AuthResponse{User: user, Token: token}, nil
}

func (as *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	user, hash, err := as.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			as.metrics.AuthAttempt(false)
			return domain.AuthResponse{}, apperr.NotFound("unknown user")
		}
		return domain.AuthResponse{}, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		as.metrics.AuthAttempt(false)
		return domain.AuthResponse{}, apperr.NotFound("unknown user")
	}

	token, err := as.tokens.Issue(ctx, user)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	as.metrics.AuthAttempt(true)
	as.log.Info("user_logged_in", map[string]any{"user_id": user.ID})
	return domain.AuthResponse{User: user, Token: token}, nil
}

func (as *AuthService) Logout(ctx context.Context, user *domain.AuthUser) error {
	if user == nil {
		return apperr.Unauthorized()
	}
	if err := as.tokens.Revoke(ctx, user.Token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	as.log.Info("user_logged_out", map[string]any{"user_id": user.ID})
	return nil
}

func (as *AuthService) Authenticate(ctx context.Context, token string) *domain.AuthUser {
	return as.tokens.Authenticate(ctx, token)
}

func (as *AuthService) EnsureUser(ctx context.Context, user domain.User, password string) (bool, error) {
	_, _, err := as.users.GetUserByEmail(ctx, user.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to look up %s: %w", user.Email, err)
	}

	hash, err := hashPassword(password, as.bcryptCost)
	if err != nil {
		return false, err
	}
	if _, err := as.users.AddUser(ctx, user, hash); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create %s: %w", user.Email, err)
	}
	return true, nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
