package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/sqlfilter"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
)

// UserDal represents user data access layer model.
type UserDal struct {
	Id        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	IsDeleted bool      `db:"is_deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts UserDal to service layer User model.
func (u *UserDal) ToModel() *user.User {
	return &user.User{
		ID:        u.Id,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

var userColumns = []string{"id", "email", "name", "role", "is_deleted", "created_at", "updated_at"}

// PostgresUserRepository represents a Postgres user repository.
type PostgresUserRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresUserRepository creates a new Postgres user repository.
func NewPostgresUserRepository(conn postgres.Conn) *PostgresUserRepository {
	return &PostgresUserRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves one page of users matching the predicate.
func (r *PostgresUserRepository) Query(
	ctx context.Context,
	p filter.Predicate,
	sort filter.Sort,
	limit, offset int,
) ([]user.User, error) {
	builder := sqlfilter.Apply(r.sb.Select(userColumns...).From("users"), p).
		OrderBy(sqlfilter.OrderBy(sort)).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.Unavailable("failed to query users", err)
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var dal UserDal
		err := rows.Scan(&dal.Id, &dal.Email, &dal.Name, &dal.Role, &dal.IsDeleted, &dal.CreatedAt, &dal.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of users matching the predicate.
func (r *PostgresUserRepository) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	sql, args, err := sqlfilter.Apply(r.sb.Select("COUNT(*)").From("users"), p).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build users count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.Unavailable("failed to count users", err)
	}

	return count, nil
}
