package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"jwt-pizza-service/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type UserRepositoryInterface interface {
	AddUser(ctx context.Context, user domain.User, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	// GetUserByEmail also returns the stored bcrypt hash.
	GetUserByEmail(ctx context.Context, email string) (domain.User, string, error)
	UpdateUser(ctx context.Context, id int64, upd UserUpdate) error
}

// UserUpdate carries the fields to change. Empty fields are left untouched.
type UserUpdate struct {
	Name         string
	Email        string
	PasswordHash string
}

func (u UserUpdate) empty() bool {
	return u.Name == "" && u.Email == "" && u.PasswordHash == ""
}

// TokenRepositoryInterface is the allow-list of issued token signatures.
type TokenRepositoryInterface interface {
	// AddToken records signature for userID. A zero expiresAt never expires.
	AddToken(ctx context.Context, signature string, userID int64, expiresAt time.Time) error
	HasToken(ctx context.Context, signature string) (bool, error)
	DeleteToken(ctx context.Context, signature string) error
}

type MenuRepositoryInterface interface {
	GetMenu(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error)
	AddMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
}

// FranchiseFilter selects one page of franchises. Name is a LIKE pattern
// matched case-insensitively.
type FranchiseFilter struct {
	Name   string
	Limit  int
	Offset int
}

type FranchiseRepositoryInterface interface {
	// ListFranchises returns the page with plain stores and whether more
	// franchises follow it.
	ListFranchises(ctx context.Context, f FranchiseFilter) ([]domain.Franchise, bool, error)
	// GetFranchise returns the franchise with its admins and per-store revenue.
	GetFranchise(ctx context.Context, id int64) (domain.Franchise, error)
	GetFranchiseIDsByAdmin(ctx context.Context, userID int64) ([]int64, error)
	CreateFranchise(ctx context.Context, name string, admins []domain.FranchiseAdmin) (domain.Franchise, error)
	DeleteFranchise(ctx context.Context, id int64) error
	GetStore(ctx context.Context, franchiseID, storeID int64) (domain.Store, error)
	CreateStore(ctx context.Context, franchiseID int64, name string) (domain.Store, error)
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error
}

type OrderRepositoryInterface interface {
	AddOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	// GetOrders returns a diner's orders newest first.
	GetOrders(ctx context.Context, dinerID int64, limit, offset int) ([]domain.Order, error)
}

type Repository struct {
	Users      UserRepositoryInterface
	Tokens     TokenRepositoryInterface
	Menu       MenuRepositoryInterface
	Franchises FranchiseRepositoryInterface
	Orders     OrderRepositoryInterface
}

func NewPostgres(db *pgxpool.Pool) *Repository {
	return &Repository{
		Users:      NewUserRepository(db),
		Tokens:     NewTokenRepository(db),
		Menu:       NewMenuRepository(db),
		Franchises: NewFranchiseRepository(db),
		Orders:     NewOrderRepository(db),
	}
}

// NewMemory backs every repository with one in-process store.
func NewMemory() *Repository {
	m := NewMemoryStore()
	return &Repository{
		Users:      m,
		Tokens:     m,
		Menu:       m,
		Franchises: m,
		Orders:     m,
	}
}
