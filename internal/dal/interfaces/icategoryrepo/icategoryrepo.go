package icategoryrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/category"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
)

// PostgresRepository is the category repository contract.
type PostgresRepository interface {
	Query(ctx context.Context, p filter.Predicate, sort filter.Sort, limit, offset int) ([]category.Category, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
	Insert(ctx context.Context, c category.Category) error
}
