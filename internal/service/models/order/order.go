package order

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
)

// Status is the lifecycle status of a placed order.
type Status string

const (
	StatusCreated   Status = "created"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrAlreadyCancelled = errors.New("order already cancelled")
)

// Order represents a placed order. Orders are immutable once created; the
// only state changes allowed afterwards are cancellation and soft delete.
type Order struct {
	ID                 string                `json:"id"`
	CustomerID         string                `json:"customerId"`
	DeliveryAddress    string                `json:"deliveryAddress"`
	Status             Status                `json:"status"`
	TotalPriceCents    int64                 `json:"totalPriceCents"`
	TotalPriceCurrency currency.Currency     `json:"totalPriceCurrency"`
	IsDeleted          bool                  `json:"isDeleted"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	OrderItems         []orderitem.OrderItem `json:"orderItems"`
}
