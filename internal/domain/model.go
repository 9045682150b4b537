package domain

import "time"

type Role string

const (
	RoleDiner      Role = "diner"
	RoleFranchisee Role = "franchisee"
	RoleAdmin      Role = "admin"
)

// UserRole binds a role to a user. ObjectID is the franchise id for
// franchisees and zero otherwise.
type UserRole struct {
	Role     Role  `json:"role"`
	ObjectID int64 `json:"objectId,omitempty"`
}

type User struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Roles []UserRole `json:"roles"`
}

// HasRole reports whether u holds role on any object.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// AuthUser is the identity attached to a request whose bearer token is both
// allow-listed and correctly signed.
type AuthUser struct {
	User
	Token string `json:"-"`
}

// IsRole reports whether the caller holds role.
func (a *AuthUser) IsRole(role Role) bool {
	return a != nil && a.HasRole(role)
}

// IsSelfOrAdmin reports whether the caller may act on the user with id.
func (a *AuthUser) IsSelfOrAdmin(id int64) bool {
	return a != nil && (a.ID == id || a.IsRole(RoleAdmin))
}

type MenuItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

type FranchiseAdmin struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Store struct {
	ID           int64    `json:"id"`
	FranchiseID  int64    `json:"franchiseId,omitempty"`
	Name         string   `json:"name"`
	TotalRevenue *float64 `json:"totalRevenue,omitempty"`
}

type Franchise struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

// IsAdministeredBy reports whether the user with id is one of the
// franchise's franchisees.
func (f Franchise) IsAdministeredBy(id int64) bool {
	for _, a := range f.Admins {
		if a.ID == id {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ID          int64   `json:"id,omitempty"`
	MenuID      int64   `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID          int64       `json:"id"`
	DinerID     int64       `json:"-"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}

// Total sums the item prices.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price
	}
	return total
}
