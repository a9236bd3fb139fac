package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id            string    `db:"id"`
	OrderId       string    `db:"order_id"`
	ProductId     string    `db:"product_id"`
	ProductTitle  string    `db:"product_title"`
	Quantity      int       `db:"quantity"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(oi.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &orderitem.OrderItem{
		ID:            oi.Id,
		OrderID:       oi.OrderId,
		ProductID:     oi.ProductId,
		ProductTitle:  oi.ProductTitle,
		Quantity:      oi.Quantity,
		PriceCents:    oi.PriceCents,
		PriceCurrency: cur,
		CreatedAt:     oi.CreatedAt,
		UpdatedAt:     oi.UpdatedAt,
	}, nil
}

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"product_title",
	"quantity",
	"price_cents",
	"price_currency",
	"created_at",
	"updated_at",
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts all items of an order in one statement.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	items []orderitem.OrderItem,
) error {
	if len(items) == 0 {
		return nil
	}

	builder := r.sb.Insert("order_items").Columns(orderItemColumns...)
	for _, item := range items {
		builder = builder.Values(
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductTitle,
			item.Quantity,
			item.PriceCents,
			item.PriceCurrency.String(),
			item.CreatedAt,
			item.UpdatedAt,
		)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order items insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.Unavailable("failed to bulk insert order items", err)
	}

	return nil
}

// QueryByOrderIDs retrieves the items of the given orders.
func (r *PostgresOrderItemRepository) QueryByOrderIDs(
	ctx context.Context,
	orderIDs []string,
) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	sql, args, err := r.sb.Select(orderItemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id, created_at, id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query order items", err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

func scanOrderItems(rows pgx.Rows) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductTitle,
			&dal.Quantity,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
