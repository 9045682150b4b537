package service

import (
	"jwt-pizza-service/internal/common/metrics"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/repository"
)

type Service struct {
	TokenService TokenServiceInterface
	AuthService  AuthServiceInterface
	UserService  UserServiceInterface
}

func New(repo *repository.Repository, cfg *config.Config, m *metrics.Metrics) *Service {
	tokens := NewTokenService(repo.Tokens, cfg.JWT.Secret, cfg.JWT.TTL)
	return &Service{
		TokenService: tokens,
		AuthService:  NewAuthService(repo.Users, tokens, cfg.Auth.BcryptCost, m),
		UserService:  NewUserService(repo.Users, tokens, cfg.Auth.BcryptCost),
	}
}
