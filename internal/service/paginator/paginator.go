package paginator

import (
	"context"
	"fmt"

	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
)

// Collection is the backing store handle for one entity type. Query and Count
// are evaluated against the identical predicate so that totalItems stays
// consistent with the fetched page. The two reads are not mutually atomic;
// under concurrent writes the count may be slightly stale.
type Collection[T any] interface {
	Query(ctx context.Context, p filter.Predicate, sort filter.Sort, limit, offset int) ([]T, error)
	Count(ctx context.Context, p filter.Predicate) (int64, error)
}

// Paginate builds a filtered, sorted page over a collection from a parsed
// page request and the entity's filter spec.
func Paginate[T any](
	ctx context.Context,
	col Collection[T],
	req pagination.PageRequest,
	spec filter.Spec,
) (*pagination.PageResult[T], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	predicate := filter.Build(req.Filters, spec, req.Search)
	sort := filter.ResolveSort(spec, req.SortBy, req.Desc())

	items, err := col.Query(ctx, predicate, sort, req.Limit, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query page: %w", err)
	}

	total, err := col.Count(ctx, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	return pagination.NewPageResult(items, total, req.Page, req.Limit), nil
}
