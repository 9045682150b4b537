package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type FranchiseServiceInterface interface {
	ListFranchises(ctx context.Context, caller *domain.AuthUser, page, limit int, name string) (domain.FranchiseList, error)
	GetUserFranchises(ctx context.Context, caller *domain.AuthUser, userID int64) ([]domain.Franchise, error)
	CreateFranchise(ctx context.Context, caller *domain.AuthUser, req domain.CreateFranchiseRequest) (domain.Franchise, error)
	DeleteFranchise(ctx context.Context, caller *domain.AuthUser, franchiseID int64) error
	CreateStore(ctx context.Context, caller *domain.AuthUser, franchiseID int64, req domain.CreateStoreRequest) (domain.Store, error)
	DeleteStore(ctx context.Context, caller *domain.AuthUser, franchiseID, storeID int64) error
}

type FranchiseService struct {
	franchises repository.FranchiseRepositoryInterface
	users      repository.UserRepositoryInterface
	log        *logger.Logger
}

func NewFranchiseService(franchises repository.FranchiseRepositoryInterface, users repository.UserRepositoryInterface) FranchiseServiceInterface {
	return &FranchiseService{franchises: franchises, users: users, log: logger.New("franchise")}
}

// ListFranchises pages through franchises whose name matches name, where *
// is a wildcard. Admins also see franchise admins and store revenue.
func (fs *FranchiseService) ListFranchises(ctx context.Context, caller *domain.AuthUser, page, limit int, name string) (domain.FranchiseList, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	if page > math.MaxInt32/limit {
		return domain.FranchiseList{}, apperr.BadRequest("page out of range")
	}
	if name == "" {
		name = "*"
	}

	franchises, more, err := fs.franchises.ListFranchises(ctx, repository.FranchiseFilter{
		Name:   strings.ReplaceAll(name, "*", "%"),
		Limit:  limit,
		Offset: page * limit,
	})
	if err != nil {
		return domain.FranchiseList{}, fmt.Errorf("failed to list franchises: %w", err)
	}

	if caller.IsRole(domain.RoleAdmin) {
		for i := range franchises {
			full, err := fs.franchises.GetFranchise(ctx, franchises[i].ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return domain.FranchiseList{}, fmt.Errorf("failed to load franchise %d: %w", franchises[i].ID, err)
			}
			franchises[i] = full
		}
	}
	return domain.FranchiseList{Franchises: franchises, More: more}, nil
}

// GetUserFranchises lists the franchises userID administers. Callers other
// than the user or an admin get an empty list.
func (fs *FranchiseService) GetUserFranchises(ctx context.Context, caller *domain.AuthUser, userID int64) ([]domain.Franchise, error) {
	out := []domain.Franchise{}
	if !caller.IsSelfOrAdmin(userID) {
		return out, nil
	}

	ids, err := fs.franchises.GetFranchiseIDsByAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchises of user %d: %w", userID, err)
	}
	for _, id := range ids {
		f, err := fs.franchises.GetFranchise(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load franchise %d: %w", id, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (fs *FranchiseService) CreateFranchise(ctx context.Context, caller *domain.AuthUser, req domain.CreateFranchiseRequest) (domain.Franchise, error) {
	if !caller.IsRole(domain.RoleAdmin) {
		return domain.Franchise{}, apperr.Forbidden("unable to create a franchise")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Franchise{}, apperr.BadRequest("franchise name is required")
	}

	admins := make([]domain.FranchiseAdmin, 0, len(req.Admins))
	for _, a := range req.Admins {
		u, _, err := fs.users.GetUserByEmail(ctx, a.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Franchise{}, apperr.NotFound(fmt.Sprintf("unknown user for franchise admin %s provided", a.Email))
			}
			return domain.Franchise{}, fmt.Errorf("failed to resolve franchise admin: %w", err)
		}
		admins = append(admins, domain.FranchiseAdmin{ID: u.ID, Name: u.Name, Email: u.Email})
	}

	f, err := fs.franchises.CreateFranchise(ctx, name, admins)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Franchise{}, apperr.Conflict("franchise already exists")
		}
		return domain.Franchise{}, fmt.Errorf("failed to create franchise: %w", err)
	}
	fs.log.Info("franchise_created", map[string]any{"franchise_id": f.ID, "admins": len(admins), "by": caller.ID})
	return f, nil
}

func (fs *FranchiseService) DeleteFranchise(ctx context.Context, caller *domain.AuthUser, franchiseID int64) error {
	if !caller.IsRole(domain.RoleAdmin) {
		return apperr.Forbidden("unable to delete a franchise")
	}
	if err := fs.franchises.DeleteFranchise(ctx, franchiseID); err != nil {
		return fmt.Errorf("failed to delete franchise %d: %w", franchiseID, err)
	}
	fs.log.Info("franchise_deleted", map[string]any{"franchise_id": franchiseID, "by": caller.ID})
	return nil
}

func (fs *FranchiseService) CreateStore(ctx context.Context, caller *domain.AuthUser, franchiseID int64, req domain.CreateStoreRequest) (domain.Store, error) {
	denied := apperr.Forbidden("unable to create a store")
	if err := fs.authorizeStore(ctx, caller, franchiseID, denied); err != nil {
		return domain.Store{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Store{}, apperr.BadRequest("store name is required")
	}

	s, err := fs.franchises.CreateStore(ctx, franchiseID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Store{}, apperr.NotFound("unknown franchise")
		}
		return domain.Store{}, fmt.Errorf("failed to create store: %w", err)
	}
	fs.log.Info("store_created", map[string]any{"franchise_id": franchiseID, "store_id": s.ID, "by": caller.ID})
	return s, nil
}

func (fs *FranchiseService) DeleteStore(ctx context.Context, caller *domain.AuthUser, franchiseID, storeID int64) error {
	if err := fs.authorizeStore(ctx, caller, franchiseID, apperr.Forbidden("unable to delete a store")); err != nil {
		return err
	}
	if err := fs.franchises.DeleteStore(ctx, franchiseID, storeID); err != nil {
		return fmt.Errorf("failed to delete store %d: %w", storeID, err)
	}
	fs.log.Info("store_deleted", map[string]any{"franchise_id": franchiseID, "store_id": storeID, "by": caller.ID})
	return nil
}

// authorizeStore lets admins and the franchise's own admins manage its
// stores. Only admins learn that a franchise does not exist.
func (fs *FranchiseService) authorizeStore(ctx context.Context, caller *domain.AuthUser, franchiseID int64, denied error) error {
	if caller == nil {
		return denied
	}
	f, err := fs.franchises.GetFranchise(ctx, franchiseID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to load franchise %d: %w", franchiseID, err)
		}
		if caller.IsRole(domain.RoleAdmin) {
			return apperr.NotFound("unknown franchise")
		}
		return denied
	}
	if caller.IsRole(domain.RoleAdmin) || f.IsAdministeredBy(caller.ID) {
		return nil
	}
	return denied
}
