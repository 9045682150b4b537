package domain

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateFranchiseRequest struct {
	Name   string          `json:"name"`
	Admins []AdminEmailRef `json:"admins"`
}

// AdminEmailRef names a franchise admin by email.
type AdminEmailRef struct {
	Email string `json:"email"`
}

type CreateStoreRequest struct {
	Name string `json:"name"`
}

type FranchiseList struct {
	Franchises []Franchise `json:"franchises"`
	More       bool        `json:"more"`
}

type CreateOrderItem struct {
	MenuID      int64   `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type CreateOrderRequest struct {
	FranchiseID int64             `json:"franchiseId"`
	StoreID     int64             `json:"storeId"`
	Items       []CreateOrderItem `json:"items"`
}

type OrderHistory struct {
	DinerID int64   `json:"dinerId"`
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
}

// OrderReceipt is returned once the factory accepted an order.
type OrderReceipt struct {
	Order     Order  `json:"order"`
	ReportURL string `json:"followLinkToEndChaos,omitempty"`
	JWT       string `json:"jwt"`
}

// OrderFailure is returned when the factory did not accept an order.
type OrderFailure struct {
	Message   string `json:"message"`
	ReportURL string `json:"followLinkToEndChaos,omitempty"`
}

// FactoryOrderRequest is the body sent to the pizza factory.
type FactoryOrderRequest struct {
	Diner FactoryDiner `json:"diner"`
	Order Order        `json:"order"`
}

type FactoryDiner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type FactoryOrderResponse struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
	Message   string `json:"message,omitempty"`
}

// EndpointDoc describes one route for /api/docs.
type EndpointDoc struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
	Description  string `json:"description"`
	Example      string `json:"example"`
	Response     any    `json:"response"`
}
