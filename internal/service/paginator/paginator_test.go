package paginator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string
	Name  string
	Price float64
	Stock int
}

var itemSpec = filter.Spec{
	Searchable: []string{"name"},
	Sortable: map[string]string{
		"price": "price",
	},
	Rules: []filter.Rule{
		{Param: "minPrice", Field: "price", Kind: filter.KindMin},
		{Param: "stock", Field: "stock", Kind: filter.KindStockBucket},
	},
}

// memCollection evaluates predicates over an in-memory slice the way a store
// adapter would, including the id tie-break on equal sort keys.
type memCollection struct {
	items    []item
	queryErr error
	countErr error
}

func (c *memCollection) matches(p filter.Predicate, it item) bool {
	for _, cond := range p.Conditions {
		switch cond.Field {
		case "is_deleted":
			// the fixture has no soft-deleted rows
		case "price":
			bound := cond.Value.(float64)
			switch cond.Op {
			case filter.OpGte:
				if it.Price < bound {
					return false
				}
			case filter.OpLte:
				if it.Price > bound {
					return false
				}
			}
		case "stock":
			bound := toInt(cond.Value)
			switch cond.Op {
			case filter.OpEq:
				if it.Stock != bound {
					return false
				}
			case filter.OpGt:
				if it.Stock <= bound {
					return false
				}
			case filter.OpLte:
				if it.Stock > bound {
					return false
				}
			}
		}
	}

	if p.Search != nil {
		if !strings.Contains(strings.ToLower(it.Name), strings.ToLower(p.Search.Term)) {
			return false
		}
	}

	return true
}

func toInt(v any) int {
	if n, ok := v.(int); ok {
		return n
	}

	return int(v.(float64))
}

func (c *memCollection) filtered(p filter.Predicate) []item {
	var result []item
	for _, it := range c.items {
		if c.matches(p, it) {
			result = append(result, it)
		}
	}

	return result
}

func (c *memCollection) Query(
	_ context.Context,
	p filter.Predicate,
	s filter.Sort,
	limit, offset int,
) ([]item, error) {
	if c.queryErr != nil {
		return nil, c.queryErr
	}

	matched := c.filtered(p)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if s.Field == "price" && a.Price != b.Price {
			if s.Desc {
				return a.Price > b.Price
			}
			return a.Price < b.Price
		}
		if s.Desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], nil
}

func (c *memCollection) Count(_ context.Context, p filter.Predicate) (int64, error) {
	if c.countErr != nil {
		return 0, c.countErr
	}

	return int64(len(c.filtered(p))), nil
}

func fixture() *memCollection {
	return &memCollection{items: []item{
		{ID: "01", Name: "Shark plush", Price: 10, Stock: 0},
		{ID: "02", Name: "Blue shark", Price: 25, Stock: 3},
		{ID: "03", Name: "Red ball", Price: 25, Stock: 8},
		{ID: "04", Name: "Green cube", Price: 5, Stock: 2},
		{ID: "05", Name: "Toy boat", Price: 40, Stock: 12},
	}}
}

func request(mutate func(*pagination.PageRequest)) pagination.PageRequest {
	req := pagination.PageRequest{
		Page:    1,
		Limit:   10,
		Filters: map[string]string{},
	}
	if mutate != nil {
		mutate(&req)
	}

	return req
}

func TestPaginateReturnsAllWithinOnePage(t *testing.T) {
	result, err := Paginate(context.Background(), fixture(), request(nil), itemSpec)
	require.NoError(t, err)

	assert.Len(t, result.Items, 5)
	assert.Equal(t, int64(5), result.Pagination.TotalItems)
	assert.Equal(t, 1, result.Pagination.TotalPages)
}

func TestPaginateSplitsPages(t *testing.T) {
	col := fixture()

	var seen []string
	for page := 1; page <= 3; page++ {
		result, err := Paginate(context.Background(), col, request(func(r *pagination.PageRequest) {
			r.Page = page
			r.Limit = 2
		}), itemSpec)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Pagination.TotalPages)
		for _, it := range result.Items {
			seen = append(seen, it.ID)
		}
	}

	assert.Len(t, seen, 5, "pages must cover every item exactly once")
	unique := map[string]struct{}{}
	for _, id := range seen {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, 5)
}

func TestPaginateIsIdempotent(t *testing.T) {
	col := fixture()
	req := request(func(r *pagination.PageRequest) { r.Limit = 2; r.Page = 2 })

	first, err := Paginate(context.Background(), col, req, itemSpec)
	require.NoError(t, err)
	second, err := Paginate(context.Background(), col, req, itemSpec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPaginateSearchCaseInsensitive(t *testing.T) {
	result, err := Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.Search = "SHARK"
	}), itemSpec)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	for _, it := range result.Items {
		assert.Contains(t, strings.ToLower(it.Name), "shark")
	}
}

func TestPaginateLowStockFilter(t *testing.T) {
	result, err := Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.Filters["stock"] = "low"
	}), itemSpec)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	for _, it := range result.Items {
		assert.Greater(t, it.Stock, 0)
		assert.LessOrEqual(t, it.Stock, filter.LowStockMax)
	}
}

func TestPaginateSortWithTieBreak(t *testing.T) {
	result, err := Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.SortBy = "price"
		r.SortOrder = "asc"
	}), itemSpec)
	require.NoError(t, err)

	ids := make([]string, len(result.Items))
	for i, it := range result.Items {
		ids[i] = it.ID
	}
	// equal prices (02, 03) resolve by id
	assert.Equal(t, []string{"04", "01", "02", "03", "05"}, ids)
}

func TestPaginatePageBeyondTotal(t *testing.T) {
	result, err := Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.Page = 9
	}), itemSpec)
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Equal(t, 9, result.Pagination.CurrentPage)
	assert.Equal(t, int64(5), result.Pagination.TotalItems)
}

func TestPaginateRejectsInvalidRequest(t *testing.T) {
	_, err := Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.Page = 0
	}), itemSpec)
	assert.ErrorIs(t, err, pagination.ErrInvalidPage)

	_, err = Paginate(context.Background(), fixture(), request(func(r *pagination.PageRequest) {
		r.Limit = 101
	}), itemSpec)
	assert.ErrorIs(t, err, pagination.ErrInvalidLimit)
}

func TestPaginatePropagatesStoreErrors(t *testing.T) {
	col := fixture()
	col.queryErr = errors.New("boom")

	_, err := Paginate(context.Background(), col, request(nil), itemSpec)
	assert.ErrorContains(t, err, "failed to query page")

	col.queryErr = nil
	col.countErr = errors.New("boom")

	_, err = Paginate(context.Background(), col, request(nil), itemSpec)
	assert.ErrorContains(t, err, "failed to count items")
}
