package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

type UserServiceInterface interface {
	// UpdateUser changes the provided fields of user id and returns the
	// updated user with a fresh token.
	UpdateUser(ctx context.Context, caller *domain.AuthUser, id int64, req domain.UpdateUserRequest) (domain.AuthResponse, error)
}

type UserService struct {
	users      repository.UserRepositoryInterface
	tokens     TokenServiceInterface
	bcryptCost int
	log        *logger.Logger
}

func NewUserService(users repository.UserRepositoryInterface, tokens TokenServiceInterface, bcryptCost int) UserServiceInterface {
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: logger.New("user")}
}

func (us *UserService) UpdateUser(ctx context.Context, caller *domain.AuthUser, id int64, req domain.UpdateUserRequest) (domain.AuthResponse, error) {
	if !caller.IsSelfOrAdmin(id) {
		return domain.AuthResponse{}, apperr.Forbidden("unauthorized")
	}

	upd := repository.UserUpdate{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if req.Password != "" {
		hash, err := hashPassword(req.Password, us.bcryptCost)
		if err != nil {
			return domain.AuthResponse{}, err
		}
		upd.PasswordHash = hash
	}

	if err := us.users.UpdateUser(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.AuthResponse{}, apperr.NotFound("unknown user")
		case errors.Is(err, repository.ErrConflict):
			return domain.AuthResponse{}, apperr.Conflict("user already exists")
		}
		return domain.AuthResponse{}, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return domain.AuthResponse{}, fmt.Errorf("failed to reload user %d: %w", id, err)
	}
	token, err := us.tokens.Issue(ctx, user)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	us.log.Info("user_updated", map[string]any{"user_id": id, "by": caller.ID})
	return domain.AuthResponse{User: user, Token: token}, nil
}
