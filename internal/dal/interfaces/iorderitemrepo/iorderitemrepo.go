package iorderitemrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
)

// PostgresRepository is the order item repository contract.
type PostgresRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) error
	QueryByOrderIDs(ctx context.Context, orderIDs []string) ([]orderitem.OrderItem, error)
}
