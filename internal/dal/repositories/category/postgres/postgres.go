package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/sqlfilter"
	"github.com/corray333/backend-labs/shop/internal/service/models/category"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
)

// CategoryDal represents category data access layer model.
type CategoryDal struct {
	Id          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsDeleted   bool      `db:"is_deleted"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToModel converts CategoryDal to service layer Category model.
func (c *CategoryDal) ToModel() *category.Category {
	return &category.Category{
		ID:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		IsDeleted:   c.IsDeleted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

var categoryColumns = []string{"id", "name", "description", "is_deleted", "created_at", "updated_at"}

// PostgresCategoryRepository represents a Postgres category repository.
type PostgresCategoryRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresCategoryRepository creates a new Postgres category repository.
func NewPostgresCategoryRepository(conn postgres.Conn) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves one page of categories matching the predicate.
func (r *PostgresCategoryRepository) Query(
	ctx context.Context,
	p filter.Predicate,
	sort filter.Sort,
	limit, offset int,
) ([]category.Category, error) {
	builder := sqlfilter.Apply(r.sb.Select(categoryColumns...).From("categories"), p).
		OrderBy(sqlfilter.OrderBy(sort)).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query categories", err)
	}
	defer rows.Close()

	var result []category.Category
	for rows.Next() {
		var dal CategoryDal
		err := rows.Scan(&dal.Id, &dal.Name, &dal.Description, &dal.IsDeleted, &dal.CreatedAt, &dal.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of categories matching the predicate.
func (r *PostgresCategoryRepository) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	sql, args, err := sqlfilter.Apply(r.sb.Select("COUNT(*)").From("categories"), p).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build categories count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.Unavailable("failed to count categories", err)
	}

	return count, nil
}

// Insert stores a new category.
func (r *PostgresCategoryRepository) Insert(ctx context.Context, c category.Category) error {
	sql, args, err := r.sb.Insert("categories").
		Columns(categoryColumns...).
		Values(c.ID, c.Name, c.Description, c.IsDeleted, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build category insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.Unavailable("failed to insert category", err)
	}

	return nil
}
