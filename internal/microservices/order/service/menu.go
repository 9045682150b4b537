package service

import (
	"context"
	"fmt"
	"strings"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/repository"
)

type MenuServiceInterface interface {
	GetMenu(ctx context.Context) ([]domain.MenuItem, error)
	// AddMenuItem stores item and returns the whole menu.
	AddMenuItem(ctx context.Context, caller *domain.AuthUser, item domain.MenuItem) ([]domain.MenuItem, error)
}

type MenuService struct {
	menu repository.MenuRepositoryInterface
	log  *logger.Logger
}

func NewMenuService(menu repository.MenuRepositoryInterface) MenuServiceInterface {
	return &MenuService{menu: menu, log: logger.New("menu")}
}

func (ms *MenuService) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := ms.menu.GetMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

func (ms *MenuService) AddMenuItem(ctx context.Context, caller *domain.AuthUser, item domain.MenuItem) ([]domain.MenuItem, error) {
	if !caller.IsRole(domain.RoleAdmin) {
		return nil, apperr.Forbidden("unable to add menu item")
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, apperr.BadRequest("menu item title is required")
	}

	added, err := ms.menu.AddMenuItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add menu item: %w", err)
	}
	ms.log.Info("menu_item_added", map[string]any{"menu_id": added.ID, "title": added.Title})
	return ms.GetMenu(ctx)
}
