package uow

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/product/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork scopes the checkout repositories to one transaction so that
// stock decrements, the order insert and the outbox event commit or roll back
// as a whole.
type unitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	productRepo   iproductrepo.PostgresRepository
	orderRepo     iorderrepo.PostgresRepository
	orderItemRepo iorderitemrepo.PostgresRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:          pool,
		productRepo:   productrepo.NewPostgresProductRepository(pool),
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		outboxRepo:    outboxrepo.NewOutboxRepository(pool),
	}
}

func (u *unitOfWork) ProductRepository() iproductrepo.PostgresRepository {
	return u.productRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.PostgresRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.PostgresRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return postgres.Unavailable("failed to begin transaction", err)
	}

	u.tx = tx
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
