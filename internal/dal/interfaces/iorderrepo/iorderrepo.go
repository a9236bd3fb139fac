package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
)

// PostgresRepository is the order repository contract.
type PostgresRepository interface {
	Insert(ctx context.Context, o order.Order) error
	GetByID(ctx context.Context, id string) (*order.Order, error)
	MarkCancelled(ctx context.Context, id string) error
	Query(ctx context.Context, p filter.Predicate, sort filter.Sort, limit, offset int) ([]order.Order, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
}
