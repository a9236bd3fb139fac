package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/uow"
	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
	"github.com/corray333/backend-labs/shop/internal/service/paginator"
	"github.com/google/uuid"
)

// Queue names for order lifecycle events published through the outbox.
const (
	QueueOrderCreated   = "shop.order.created"
	QueueOrderCancelled = "shop.order.cancelled"

	outboxMaxRetries = 5
)

// ErrMixedCurrencies is returned when a checkout spans products priced in
// different currencies; an order carries a single total currency.
var ErrMixedCurrencies = errors.New("order lines must share one currency")

// orderFilterSpec is the order listing schema, resolved once at startup.
var orderFilterSpec = filter.Spec{
	Sortable: map[string]string{
		"createdAt":  "created_at",
		"totalPrice": "total_price_cents",
	},
	Rules: []filter.Rule{
		{Param: "customerId", Field: "customer_id", Kind: filter.KindExact},
		{Param: "status", Field: "status", Kind: filter.KindSet},
		{Param: "startDate", Field: "created_at", Kind: filter.KindDateFrom},
		{Param: "endDate", Field: "created_at", Kind: filter.KindDateTo},
	},
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.PostgresRepository
	OrderRepository() iorderrepo.PostgresRepository
	OrderItemRepository() iorderitemrepo.PostgresRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// OrderService owns checkout (the stock reservation protocol), order listing
// and compensating cancellation. Stock mutation happens here and nowhere
// else.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit of work constructor.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// Checkout atomically converts a reservation request into stock decrements
// and a new order. Lines are processed in submission order. Every decrement,
// the order insert and the outbox event share one transaction, so a failed
// line rolls the whole reservation back and stock never goes negative.
//
// Checkout does not deduplicate retried identical requests; callers that
// retry after an ambiguous failure must reconcile on their side.
func (s *OrderService) Checkout(ctx context.Context, req reservation.Request) (*order.Order, error) {
	attempt := reservation.NewAttempt()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}

	placed, err := s.checkout(ctx, work, attempt, req)
	if err != nil {
		attempt.Advance(reservation.StatusFailed)
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Failed to roll back checkout", "error", rbErr)
		}

		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		attempt.Advance(reservation.StatusFailed)

		return nil, err
	}

	attempt.Advance(reservation.StatusCommitted)
	slog.Info("Order committed", "order_id", placed.ID, "lines", len(placed.OrderItems))

	return placed, nil
}

func (s *OrderService) checkout(
	ctx context.Context,
	work unitOfWork,
	attempt *reservation.Attempt,
	req reservation.Request,
) (*order.Order, error) {
	attempt.Advance(reservation.StatusValidating)

	ids := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		ids[i] = line.ProductID
	}

	products, err := work.ProductRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var orderCurrency currency.Currency
	for _, line := range req.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", product.ErrNotFound, line.ProductID)
		}
		if !p.IsPublished {
			return nil, &reservation.ProductUnavailableError{ProductID: line.ProductID}
		}
		if orderCurrency == "" {
			orderCurrency = p.PriceCurrency
		} else if orderCurrency != p.PriceCurrency {
			return nil, ErrMixedCurrencies
		}
	}

	attempt.Advance(reservation.StatusReserving)

	now := time.Now()
	placed := &order.Order{
		ID:                 uuid.NewString(),
		CustomerID:         req.CustomerID,
		DeliveryAddress:    req.DeliveryAddress,
		Status:             order.StatusCreated,
		TotalPriceCurrency: orderCurrency,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	for _, line := range req.Lines {
		reserved, err := work.ProductRepository().DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !reserved {
			return nil, &reservation.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
			}
		}

		p := byID[line.ProductID]
		placed.TotalPriceCents += p.PriceCents * int64(line.Quantity)
		placed.OrderItems = append(placed.OrderItems, orderitem.OrderItem{
			ID:            uuid.NewString(),
			OrderID:       placed.ID,
			ProductID:     p.ID,
			ProductTitle:  p.Name,
			Quantity:      line.Quantity,
			PriceCents:    p.PriceCents,
			PriceCurrency: p.PriceCurrency,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := work.OrderRepository().Insert(ctx, *placed); err != nil {
		return nil, err
	}
	if err := work.OrderItemRepository().BulkInsert(ctx, placed.OrderItems); err != nil {
		return nil, err
	}
	if err := s.insertOrderEvent(ctx, work, QueueOrderCreated, placed); err != nil {
		return nil, err
	}

	return placed, nil
}

// CancelOrder compensates a committed order: restocks every line, marks the
// order cancelled and emits a cancellation event, all in one transaction.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}

	cancelled, err := s.cancel(ctx, work, orderID)
	if err != nil {
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Failed to roll back cancellation", "error", rbErr)
		}

		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	slog.Info("Order cancelled", "order_id", orderID)

	return cancelled, nil
}

func (s *OrderService) cancel(ctx context.Context, work unitOfWork, orderID string) (*order.Order, error) {
	ord, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := work.OrderRepository().MarkCancelled(ctx, orderID); err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := work.ProductRepository().RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	ord.Status = order.StatusCancelled
	ord.OrderItems = items
	if err := s.insertOrderEvent(ctx, work, QueueOrderCancelled, ord); err != nil {
		return nil, err
	}

	return ord, nil
}

// GetOrders retrieves one page of orders with their items.
func (s *OrderService) GetOrders(
	ctx context.Context,
	req pagination.PageRequest,
) (*pagination.PageResult[order.Order], error) {
	work := s.newUOW()

	result, err := paginator.Paginate(ctx, work.OrderRepository(), req, orderFilterSpec)
	if err != nil {
		return nil, err
	}

	if len(result.Items) == 0 {
		return result, nil
	}

	orderIDs := make([]string, len(result.Items))
	for i, o := range result.Items {
		orderIDs[i] = o.ID
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range result.Items {
		for _, item := range items {
			if item.OrderID == result.Items[i].ID {
				result.Items[i].OrderItems = append(result.Items[i].OrderItems, item)
			}
		}
	}

	return result, nil
}

func (s *OrderService) insertOrderEvent(
	ctx context.Context,
	work unitOfWork,
	queue string,
	ord *order.Order,
) error {
	payload, err := json.Marshal(ord)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.OutboxMessage{
		QueueName:   queue,
		RoutingKey:  queue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  outboxMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
