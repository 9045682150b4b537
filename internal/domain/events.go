package domain

import "time"

const EventOrderFulfilled = "order.fulfilled"

// OrderEvent is published to the order exchange after the factory accepted
// an order.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	DinerID     int64     `json:"dinerId"`
	FranchiseID int64     `json:"franchiseId"`
	StoreID     int64     `json:"storeId"`
	ItemCount   int       `json:"itemCount"`
	Total       float64   `json:"total"`
	FactoryJWT  string    `json:"factoryJwt"`
	OccurredAt  time.Time `json:"occurredAt"`
}
