package iuserrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
)

// PostgresRepository is the user repository contract.
type PostgresRepository interface {
	Query(ctx context.Context, p filter.Predicate, sort filter.Sort, limit, offset int) ([]user.User, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
}
