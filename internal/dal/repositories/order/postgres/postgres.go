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
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id                 string    `db:"id"`
	CustomerId         string    `db:"customer_id"`
	DeliveryAddress    string    `db:"delivery_address"`
	Status             string    `db:"status"`
	TotalPriceCents    int64     `db:"total_price_cents"`
	TotalPriceCurrency string    `db:"total_price_currency"`
	IsDeleted          bool      `db:"is_deleted"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalPriceCurrency)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                 o.Id,
		CustomerID:         o.CustomerId,
		DeliveryAddress:    o.DeliveryAddress,
		Status:             order.Status(o.Status),
		TotalPriceCents:    o.TotalPriceCents,
		TotalPriceCurrency: cur,
		IsDeleted:          o.IsDeleted,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		OrderItems:         []orderitem.OrderItem{}, // populated separately
	}, nil
}

var orderColumns = []string{
	"id",
	"customer_id",
	"delivery_address",
	"status",
	"total_price_cents",
	"total_price_currency",
	"is_deleted",
	"created_at",
	"updated_at",
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores a new order.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	sql, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.CustomerID,
			o.DeliveryAddress,
			string(o.Status),
			o.TotalPriceCents,
			o.TotalPriceCurrency.String(),
			o.IsDeleted,
			o.CreatedAt,
			o.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.Unavailable("failed to insert order", err)
	}

	return nil
}

// GetByID retrieves a single order without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	sql, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.DeliveryAddress,
		&dal.Status,
		&dal.TotalPriceCents,
		&dal.TotalPriceCurrency,
		&dal.IsDeleted,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, order.ErrNotFound
		}

		return nil, postgres.Unavailable("failed to get order", err)
	}

	return dal.ToModel()
}

// MarkCancelled flips an order to cancelled status. Returns
// order.ErrAlreadyCancelled when the order was cancelled before.
func (r *PostgresOrderRepository) MarkCancelled(ctx context.Context, id string) error {
	sql, args, err := r.sb.Update("orders").
		Set("status", string(order.StatusCancelled)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "is_deleted": false}).
		Where(sq.NotEq{"status": string(order.StatusCancelled)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order cancel: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.Unavailable("failed to cancel order", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrAlreadyCancelled
	}

	return nil
}

// Query retrieves one page of orders matching the predicate.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	p filter.Predicate,
	sort filter.Sort,
	limit, offset int,
) ([]order.Order, error) {
	builder := sqlfilter.Apply(r.sb.Select(orderColumns...).From("orders"), p).
		OrderBy(sqlfilter.OrderBy(sort)).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build orders query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query orders", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.CustomerId,
			&dal.DeliveryAddress,
			&dal.Status,
			&dal.TotalPriceCents,
			&dal.TotalPriceCurrency,
			&dal.IsDeleted,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the predicate.
func (r *PostgresOrderRepository) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	sql, args, err := sqlfilter.Apply(r.sb.Select("COUNT(*)").From("orders"), p).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build orders count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.Unavailable("failed to count orders", err)
	}

	return count, nil
}
