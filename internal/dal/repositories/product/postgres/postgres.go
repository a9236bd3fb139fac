package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/sqlfilter"
	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/jackc/pgx/v5"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            string    `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	CategoryId    string    `db:"category_id"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	Stock         int       `db:"stock"`
	IsPublished   bool      `db:"is_published"`
	IsDeleted     bool      `db:"is_deleted"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryId,
		PriceCents:    p.PriceCents,
		PriceCurrency: cur,
		Stock:         p.Stock,
		IsPublished:   p.IsPublished,
		IsDeleted:     p.IsDeleted,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

var productColumns = []string{
	"id",
	"name",
	"description",
	"category_id",
	"price_cents",
	"price_currency",
	"stock",
	"is_published",
	"is_deleted",
	"created_at",
	"updated_at",
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves one page of products matching the predicate.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	p filter.Predicate,
	sort filter.Sort,
	limit, offset int,
) ([]product.Product, error) {
	builder := sqlfilter.Apply(r.sb.Select(productColumns...).From("products"), p).
		OrderBy(sqlfilter.OrderBy(sort)).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Count returns the number of products matching the predicate.
func (r *PostgresProductRepository) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	sql, args, err := sqlfilter.Apply(r.sb.Select("COUNT(*)").From("products"), p).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build products count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.Unavailable("failed to count products", err)
	}

	return count, nil
}

// GetByIDs retrieves products by id, soft-deleted rows excluded.
func (r *PostgresProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}

	sql, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": ids}).
		Where(sq.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query products by ids", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Insert stores a new product.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) error {
	sql, args, err := r.sb.Insert("products").
		Columns(productColumns...).
		Values(
			p.ID,
			p.Name,
			p.Description,
			p.CategoryID,
			p.PriceCents,
			p.PriceCurrency.String(),
			p.Stock,
			p.IsPublished,
			p.IsDeleted,
			p.CreatedAt,
			p.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build product insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.Unavailable("failed to insert product", err)
	}

	return nil
}

// SoftDelete marks a product as deleted without removing its row.
func (r *PostgresProductRepository) SoftDelete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Update("products").
		Set("is_deleted", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build product delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.Unavailable("failed to soft delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}

	return nil
}

// DecrementStock atomically decrements stock by quantity only if enough stock
// remains. It is a single conditional update, not a read-then-write pair, so
// two concurrent reservations for the last unit can never both succeed.
// Returns false when the decrement affected no row.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	sql, args, err := r.sb.Update("products").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "is_deleted": false}).
		Where(sq.GtOrEq{"stock": quantity}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build stock decrement: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.Unavailable("failed to decrement stock", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RestoreStock adds quantity back to a product's stock. Used by the
// compensating cancellation path, never by checkout itself.
func (r *PostgresProductRepository) RestoreStock(ctx context.Context, id string, quantity int) error {
	sql, args, err := r.sb.Update("products").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build stock restore: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.Unavailable("failed to restore stock", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}

	return nil
}

func scanProducts(rows pgx.Rows) ([]product.Product, error) {
	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.Description,
			&dal.CategoryId,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Stock,
			&dal.IsPublished,
			&dal.IsDeleted,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
