package handlers

import "jwt-pizza-service/internal/microservices/franchise/service"

type Handler struct {
	FranchiseHandler *FranchiseHandler
}

func New(s *service.Service) *Handler {
	return &Handler{
		FranchiseHandler: NewFranchiseHandler(s.FranchiseService),
	}
}
