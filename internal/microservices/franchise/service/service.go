package service

import "jwt-pizza-service/internal/repository"

type Service struct {
	FranchiseService FranchiseServiceInterface
}

func New(repo *repository.Repository) *Service {
	return &Service{
		FranchiseService: NewFranchiseService(repo.Franchises, repo.Users),
	}
}
