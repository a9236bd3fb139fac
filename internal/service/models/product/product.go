package product

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
)

// ErrNotFound is returned when a referenced product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog product.
type Product struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	CategoryID    string            `json:"categoryId"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Stock         int               `json:"stock"`
	IsPublished   bool              `json:"isPublished"`
	IsDeleted     bool              `json:"isDeleted"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Stats holds derived stock statistics over published products.
type Stats struct {
	Total      int64 `json:"total"`
	OutOfStock int64 `json:"outOfStock"`
	LowStock   int64 `json:"lowStock"`
}
