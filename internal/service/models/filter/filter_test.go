package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productSpec = Spec{
	Searchable: []string{"name", "description"},
	Sortable: map[string]string{
		"createdAt": "created_at",
		"price":     "price_cents",
	},
	Rules: []Rule{
		{Param: "category", Field: "category_id", Kind: KindExact},
		{Param: "minPrice", Field: "price_cents", Kind: KindMin},
		{Param: "maxPrice", Field: "price_cents", Kind: KindMax},
		{Param: "status", Field: "status", Kind: KindSet},
		{Param: "startDate", Field: "created_at", Kind: KindDateFrom},
		{Param: "endDate", Field: "created_at", Kind: KindDateTo},
		{Param: "stock", Field: "stock", Kind: KindStockBucket},
		{Param: "isPublished", Field: "is_published", Kind: KindBool},
	},
}

func conditionFor(t *testing.T, p Predicate, field string, op Op) Condition {
	t.Helper()
	for _, c := range p.Conditions {
		if c.Field == field && c.Op == op {
			return c
		}
	}
	t.Fatalf("no condition for field %q op %d in %+v", field, op, p.Conditions)

	return Condition{}
}

func TestBuildExcludesSoftDeletedByDefault(t *testing.T) {
	p := Build(map[string]string{}, productSpec, "")

	c := conditionFor(t, p, "is_deleted", OpEq)
	assert.Equal(t, false, c.Value)
}

func TestBuildIncludesSoftDeletedOnRequest(t *testing.T) {
	p := Build(map[string]string{"isDeleted": "true"}, productSpec, "")

	c := conditionFor(t, p, "is_deleted", OpEq)
	assert.Equal(t, true, c.Value)
}

func TestBuildSearch(t *testing.T) {
	p := Build(map[string]string{}, productSpec, "shark")

	require.NotNil(t, p.Search)
	assert.Equal(t, "shark", p.Search.Term)
	assert.Equal(t, []string{"name", "description"}, p.Search.Fields)
}

func TestBuildNoSearchWithoutSearchableFields(t *testing.T) {
	p := Build(map[string]string{}, Spec{}, "shark")

	assert.Nil(t, p.Search)
}

func TestBuildExactAndRange(t *testing.T) {
	p := Build(map[string]string{
		"category": "toys",
		"minPrice": "100",
		"maxPrice": "500",
	}, productSpec, "")

	assert.Equal(t, "toys", conditionFor(t, p, "category_id", OpEq).Value)
	assert.Equal(t, 100.0, conditionFor(t, p, "price_cents", OpGte).Value)
	assert.Equal(t, 500.0, conditionFor(t, p, "price_cents", OpLte).Value)
}

func TestBuildSet(t *testing.T) {
	p := Build(map[string]string{"status": "created, cancelled ,"}, productSpec, "")

	c := conditionFor(t, p, "status", OpIn)
	assert.Equal(t, []string{"created", "cancelled"}, c.Value)
}

func TestBuildDateRange(t *testing.T) {
	p := Build(map[string]string{
		"startDate": "2026-01-01",
		"endDate":   "2026-02-01T15:04:05Z",
	}, productSpec, "")

	from := conditionFor(t, p, "created_at", OpGte)
	to := conditionFor(t, p, "created_at", OpLte)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from.Value)
	assert.Equal(t, time.Date(2026, 2, 1, 15, 4, 5, 0, time.UTC), to.Value)
}

func TestBuildStockBuckets(t *testing.T) {
	out := Build(map[string]string{"stock": "out"}, productSpec, "")
	assert.Equal(t, 0, conditionFor(t, out, "stock", OpEq).Value)

	low := Build(map[string]string{"stock": "low"}, productSpec, "")
	assert.Equal(t, 0, conditionFor(t, low, "stock", OpGt).Value)
	assert.Equal(t, LowStockMax, conditionFor(t, low, "stock", OpLte).Value)

	available := Build(map[string]string{"stock": "available"}, productSpec, "")
	assert.Equal(t, LowStockMax, conditionFor(t, available, "stock", OpGt).Value)
}

func TestBuildBool(t *testing.T) {
	p := Build(map[string]string{"isPublished": "true"}, productSpec, "")

	assert.Equal(t, true, conditionFor(t, p, "is_published", OpEq).Value)
}

func TestBuildIgnoresUnknownParams(t *testing.T) {
	p := Build(map[string]string{"color": "red"}, productSpec, "")

	// only the implicit is_deleted condition remains
	assert.Len(t, p.Conditions, 1)
}

func TestBuildSkipsUnparsableValues(t *testing.T) {
	p := Build(map[string]string{
		"minPrice":  "cheap",
		"startDate": "yesterday",
		"stock":     "plenty",
	}, productSpec, "")

	assert.Len(t, p.Conditions, 1)
}

func TestResolveSort(t *testing.T) {
	sort := ResolveSort(productSpec, "price", true)
	assert.Equal(t, Sort{Field: "price_cents", Desc: true}, sort)

	fallback := ResolveSort(productSpec, "rating", false)
	assert.Equal(t, Sort{Field: DefaultSortField, Desc: false}, fallback)

	empty := ResolveSort(productSpec, "", true)
	assert.Equal(t, DefaultSortField, empty.Field)
}
