package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
)

// PostgresRepository is the product repository contract.
type PostgresRepository interface {
	Query(ctx context.Context, p filter.Predicate, sort filter.Sort, limit, offset int) ([]product.Product, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
	GetByIDs(ctx context.Context, ids []string) ([]product.Product, error)
	Insert(ctx context.Context, p product.Product) error
	SoftDelete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
	RestoreStock(ctx context.Context, id string, quantity int) error
}
