package orderitem

import (
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
)

// OrderItem represents one line of an order. Title and price are snapshots
// taken at reservation time; later catalog changes do not alter them.
type OrderItem struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"orderId"`
	ProductID     string            `json:"productId"`
	ProductTitle  string            `json:"productTitle"`
	Quantity      int               `json:"quantity"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
