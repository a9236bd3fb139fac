package catalogsvc

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/shop/internal/cache"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/icategoryrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	categoryrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/category/postgres"
	productrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/category"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/paginator"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const statsCacheKey = "product_stats"

// productFilterSpec is the product listing schema, resolved once at startup.
var productFilterSpec = filter.Spec{
	Searchable: []string{"name", "description"},
	Sortable: map[string]string{
		"createdAt": "created_at",
		"name":      "name",
		"price":     "price_cents",
		"stock":     "stock",
	},
	Rules: []filter.Rule{
		{Param: "category", Field: "category_id", Kind: filter.KindExact},
		{Param: "minPrice", Field: "price_cents", Kind: filter.KindMin},
		{Param: "maxPrice", Field: "price_cents", Kind: filter.KindMax},
		{Param: "stock", Field: "stock", Kind: filter.KindStockBucket},
		{Param: "isPublished", Field: "is_published", Kind: filter.KindBool},
	},
}

// categoryFilterSpec is the category listing schema.
var categoryFilterSpec = filter.Spec{
	Searchable: []string{"name"},
	Sortable: map[string]string{
		"createdAt": "created_at",
		"name":      "name",
	},
}

// CatalogService serves product and category listings plus derived stock
// statistics.
type CatalogService struct {
	pgClient     *postgres.Client
	productRepo  iproductrepo.PostgresRepository
	categoryRepo icategoryrepo.PostgresRepository
	statsCache   *cache.Cache[product.Stats]
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.productRepo == nil {
		s.productRepo = productrepo.NewPostgresProductRepository(s.pgClient.Pool())
	}
	if s.categoryRepo == nil {
		s.categoryRepo = categoryrepo.NewPostgresCategoryRepository(s.pgClient.Pool())
	}
	if s.statsCache == nil {
		ttlSeconds := viper.GetInt("catalog.stats_ttl_seconds")
		if ttlSeconds == 0 {
			ttlSeconds = 30
		}
		s.statsCache = cache.New[product.Stats](time.Duration(ttlSeconds) * time.Second)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.pgClient = pgClient
	}
}

// WithProductRepository overrides the product repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.PostgresRepository) option {
	return func(s *CatalogService) {
		s.productRepo = repo
	}
}

// WithCategoryRepository overrides the category repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCategoryRepository(repo icategoryrepo.PostgresRepository) option {
	return func(s *CatalogService) {
		s.categoryRepo = repo
	}
}

// WithStatsCache overrides the stats cache.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStatsCache(c *cache.Cache[product.Stats]) option {
	return func(s *CatalogService) {
		s.statsCache = c
	}
}

// GetProducts retrieves one page of products.
func (s *CatalogService) GetProducts(
	ctx context.Context,
	req pagination.PageRequest,
) (*pagination.PageResult[product.Product], error) {
	return paginator.Paginate(ctx, s.productRepo, req, productFilterSpec)
}

// GetCategories retrieves one page of categories.
func (s *CatalogService) GetCategories(
	ctx context.Context,
	req pagination.PageRequest,
) (*pagination.PageResult[category.Category], error) {
	return paginator.Paginate(ctx, s.categoryRepo, req, categoryFilterSpec)
}

// CreateProduct stores a new product and invalidates the stats cache.
func (s *CatalogService) CreateProduct(ctx context.Context, p product.Product) (*product.Product, error) {
	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.productRepo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(statsCacheKey)

	return &p, nil
}

// DeleteProduct soft-deletes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.statsCache.Invalidate(statsCacheKey)

	return nil
}

// GetProductStats returns stock statistics over published products, cached
// with a TTL since they are derived and tolerate slight staleness.
func (s *CatalogService) GetProductStats(ctx context.Context) (product.Stats, error) {
	return s.statsCache.Get(ctx, statsCacheKey, s.computeStats)
}

func (s *CatalogService) computeStats(ctx context.Context) (product.Stats, error) {
	published := filter.Condition{Field: "is_published", Op: filter.OpEq, Value: true}
	notDeleted := filter.Condition{Field: "is_deleted", Op: filter.OpEq, Value: false}

	var stats product.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.productRepo.Count(ctx, filter.Predicate{
			Conditions: []filter.Condition{notDeleted, published},
		})
		stats.Total = total

		return err
	})

	g.Go(func() error {
		out, err := s.productRepo.Count(ctx, filter.Predicate{
			Conditions: []filter.Condition{
				notDeleted,
				published,
				{Field: "stock", Op: filter.OpEq, Value: 0},
			},
		})
		stats.OutOfStock = out

		return err
	})

	g.Go(func() error {
		low, err := s.productRepo.Count(ctx, filter.Predicate{
			Conditions: []filter.Condition{
				notDeleted,
				published,
				{Field: "stock", Op: filter.OpGt, Value: 0},
				{Field: "stock", Op: filter.OpLte, Value: filter.LowStockMax},
			},
		})
		stats.LowStock = low

		return err
	})

	if err := g.Wait(); err != nil {
		return product.Stats{}, err
	}

	return stats, nil
}
