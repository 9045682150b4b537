package order

import (
	"net/http"
	"time"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/order/handlers"
)

func Routes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /api/order/menu", h.MenuHandler.GetMenu)
	mux.HandleFunc("PUT /api/order/menu", httpx.RequireAuth(h.MenuHandler.AddMenuItem))
	mux.HandleFunc("GET /api/order", httpx.RequireAuth(h.OrderHandler.GetOrders))
	mux.HandleFunc("POST /api/order", httpx.RequireAuth(h.OrderHandler.CreateOrder))
}

func Docs() []domain.EndpointDoc {
	veggie := domain.MenuItem{ID: 1, Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"}
	order := domain.Order{
		ID:          1,
		FranchiseID: 1,
		StoreID:     1,
		Date:        time.Date(2024, 6, 5, 5, 14, 40, 0, time.UTC),
		Items:       []domain.OrderItem{{ID: 1, MenuID: 1, Description: "Veggie", Price: 0.05}},
	}
	return []domain.EndpointDoc{
		{
			Method:      "GET",
			Path:        "/api/order/menu",
			Description: "Get the pizza menu",
			Example:     `curl localhost:3000/api/order/menu`,
			Response:    []domain.MenuItem{veggie},
		},
		{
			Method:       "PUT",
			Path:         "/api/order/menu",
			RequiresAuth: true,
			Description:  "Add an item to the menu",
			Example:      `curl -X PUT localhost:3000/api/order/menu -H 'Content-Type: application/json' -d '{ "title":"Student", "description": "No topping, no sauce, just carbs", "image":"pizza9.png", "price": 0.0001 }'  -H 'Authorization: Bearer tttttt'`,
			Response:     []domain.MenuItem{{ID: 1, Title: "Student", Description: "No topping, no sauce, just carbs", Image: "pizza9.png", Price: 0.0001}},
		},
		{
			Method:       "GET",
			Path:         "/api/order",
			RequiresAuth: true,
			Description:  "Get the orders for the authenticated user",
			Example:      `curl -X GET localhost:3000/api/order  -H 'Authorization: Bearer tttttt'`,
			Response:     domain.OrderHistory{DinerID: 4, Orders: []domain.Order{order}, Page: 1},
		},
		{
			Method:       "POST",
			Path:         "/api/order",
			RequiresAuth: true,
			Description:  "Create a order for the authenticated user",
			Example:      `curl -X POST localhost:3000/api/order -H 'Content-Type: application/json' -d '{"franchiseId": 1, "storeId":1, "items":[{ "menuId": 1, "description": "Veggie", "price": 0.05 }]}'  -H 'Authorization: Bearer tttttt'`,
			Response:     domain.OrderReceipt{Order: order, JWT: "1111111111"},
		},
	}
}
