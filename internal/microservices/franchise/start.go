package franchise

import (
	"net/http"

	"jwt-pizza-service/internal/common/httpx"
	"jwt-pizza-service/internal/domain"
	"jwt-pizza-service/internal/microservices/franchise/handlers"
)

func Routes(mux *http.ServeMux, h *handlers.Handler) {
	fh := h.FranchiseHandler
	mux.HandleFunc("GET /api/franchise", fh.ListFranchises)
	mux.HandleFunc("GET /api/franchise/{userId}", httpx.RequireAuth(fh.GetUserFranchises))
	mux.HandleFunc("POST /api/franchise", httpx.RequireAuth(fh.CreateFranchise))
	mux.HandleFunc("DELETE /api/franchise/{franchiseId}", httpx.RequireAuth(fh.DeleteFranchise))
	mux.HandleFunc("POST /api/franchise/{franchiseId}/store", httpx.RequireAuth(fh.CreateStore))
	mux.HandleFunc("DELETE /api/franchise/{franchiseId}/store/{storeId}", httpx.RequireAuth(fh.DeleteStore))
}

func Docs() []domain.EndpointDoc {
	revenue := 0.0
	admin := domain.FranchiseAdmin{ID: 4, Name: "pizza franchisee", Email: "f@jwt.com"}
	return []domain.EndpointDoc{
		{
			Method:      "GET",
			Path:        "/api/franchise?page=0&limit=10&name=pizzaPocket",
			Description: "List all the franchises",
			Example:     `curl localhost:3000/api/franchise?page=0&limit=10&name=pizzaPocket`,
			Response: domain.FranchiseList{
				Franchises: []domain.Franchise{{ID: 1, Name: "pizzaPocket", Stores: []domain.Store{{ID: 1, Name: "SLC"}}}},
				More:       true,
			},
		},
		{
			Method:       "GET",
			Path:         "/api/franchise/:userId",
			RequiresAuth: true,
			Description:  "List a user's franchises",
			Example:      `curl localhost:3000/api/franchise/4 -H 'Authorization: Bearer tttttt'`,
			Response: []domain.Franchise{{
				ID: 2, Name: "pizzaPocket",
				Admins: []domain.FranchiseAdmin{admin},
				Stores: []domain.Store{{ID: 4, Name: "SLC", TotalRevenue: &revenue}},
			}},
		},
		{
			Method:       "POST",
			Path:         "/api/franchise",
			RequiresAuth: true,
			Description:  "Create a new franchise",
			Example:      `curl -X POST localhost:3000/api/franchise -H 'Content-Type: application/json' -H 'Authorization: Bearer tttttt' -d '{"name": "pizzaPocket", "admins": [{"email": "f@jwt.com"}]}'`,
			Response:     domain.Franchise{ID: 1, Name: "pizzaPocket", Admins: []domain.FranchiseAdmin{admin}, Stores: []domain.Store{}},
		},
		{
			Method:       "DELETE",
			Path:         "/api/franchise/:franchiseId",
			RequiresAuth: true,
			Description:  "Delete a franchise",
			Example:      `curl -X DELETE localhost:3000/api/franchise/1 -H 'Authorization: Bearer tttttt'`,
			Response:     domain.MessageResponse{Message: "franchise deleted"},
		},
		{
			Method:       "POST",
			Path:         "/api/franchise/:franchiseId/store",
			RequiresAuth: true,
			Description:  "Create a new franchise store",
			Example:      `curl -X POST localhost:3000/api/franchise/1/store -H 'Content-Type: application/json' -d '{"name":"SLC"}' -H 'Authorization: Bearer tttttt'`,
			Response:     domain.Store{ID: 1, FranchiseID: 1, Name: "SLC"},
		},
		{
			Method:       "DELETE",
			Path:         "/api/franchise/:franchiseId/store/:storeId",
			RequiresAuth: true,
			Description:  "Delete a store",
			Example:      `curl -X DELETE localhost:3000/api/franchise/1/store/1 -H 'Authorization: Bearer tttttt'`,
			Response:     domain.MessageResponse{Message: "store deleted"},
		},
	}
}
