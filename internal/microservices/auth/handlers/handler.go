package handlers

import "jwt-pizza-service/internal/microservices/auth/service"

type Handler struct {
	AuthHandler *AuthHandler
	UserHandler *UserHandler
}

func New(s *service.Service) *Handler {
	return &Handler{
		AuthHandler: NewAuthHandler(s.AuthService),
		UserHandler: NewUserHandler(s.UserService),
	}
}
