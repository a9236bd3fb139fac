package ordersvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is the shared state behind the fake unit of work. Each unit of
// work holds the store mutex from Begin until Commit or Rollback, which
// serializes transactions the way row locks do.
type memStore struct {
	mu       sync.Mutex
	products map[string]*product.Product
	orders   map[string]*order.Order
	items    []orderitem.OrderItem
	events   []outbox.OutboxMessage
	begins   int
}

func newMemStore(products ...product.Product) *memStore {
	s := &memStore{
		products: map[string]*product.Product{},
		orders:   map[string]*order.Order{},
	}
	for _, p := range products {
		cp := p
		s.products[p.ID] = &cp
	}

	return s
}

// memUOW is an in-memory unit of work. Mutations apply to the store
// immediately and are undone in reverse order on rollback.
type memUOW struct {
	store *memStore
	undo  []func()
}

func (u *memUOW) Begin(_ context.Context) error {
	u.store.mu.Lock()
	u.store.begins++

	return nil
}

func (u *memUOW) Commit(_ context.Context) error {
	u.undo = nil
	u.store.mu.Unlock()

	return nil
}

func (u *memUOW) Rollback(_ context.Context) error {
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	u.store.mu.Unlock()

	return nil
}

func (u *memUOW) ProductRepository() iproductrepo.PostgresRepository {
	return &memProductRepo{uow: u}
}

func (u *memUOW) OrderRepository() iorderrepo.PostgresRepository {
	return &memOrderRepo{uow: u}
}

func (u *memUOW) OrderItemRepository() iorderitemrepo.PostgresRepository {
	return &memOrderItemRepo{uow: u}
}

func (u *memUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &memOutboxRepo{uow: u}
}

type memProductRepo struct {
	uow *memUOW
}

func (r *memProductRepo) Query(_ context.Context, _ filter.Predicate, _ filter.Sort, _, _ int) ([]product.Product, error) {
	return nil, nil
}

func (r *memProductRepo) Count(_ context.Context, _ filter.Predicate) (int64, error) {
	return 0, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	result := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.uow.store.products[id]; ok && !p.IsDeleted {
			result = append(result, *p)
		}
	}

	return result, nil
}

func (r *memProductRepo) Insert(_ context.Context, p product.Product) error {
	cp := p
	r.uow.store.products[p.ID] = &cp

	return nil
}

func (r *memProductRepo) SoftDelete(_ context.Context, id string) error {
	p, ok := r.uow.store.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.IsDeleted = true

	return nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	p, ok := r.uow.store.products[id]
	if !ok || p.IsDeleted || p.Stock < quantity {
		return false, nil
	}

	p.Stock -= quantity
	r.uow.undo = append(r.uow.undo, func() { p.Stock += quantity })

	return true, nil
}

func (r *memProductRepo) RestoreStock(_ context.Context, id string, quantity int) error {
	p, ok := r.uow.store.products[id]
	if !ok {
		return product.ErrNotFound
	}

	p.Stock += quantity
	r.uow.undo = append(r.uow.undo, func() { p.Stock -= quantity })

	return nil
}

type memOrderRepo struct {
	uow *memUOW
}

func (r *memOrderRepo) Insert(_ context.Context, o order.Order) error {
	cp := o
	r.uow.store.orders[o.ID] = &cp
	r.uow.undo = append(r.uow.undo, func() { delete(r.uow.store.orders, o.ID) })

	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := r.uow.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o

	return &cp, nil
}

func (r *memOrderRepo) MarkCancelled(_ context.Context, id string) error {
	o, ok := r.uow.store.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status == order.StatusCancelled {
		return order.ErrAlreadyCancelled
	}

	prev := o.Status
	o.Status = order.StatusCancelled
	r.uow.undo = append(r.uow.undo, func() { o.Status = prev })

	return nil
}

func (r *memOrderRepo) Query(_ context.Context, _ filter.Predicate, _ filter.Sort, limit, offset int) ([]order.Order, error) {
	all := make([]order.Order, 0, len(r.uow.store.orders))
	for _, o := range r.uow.store.orders {
		all = append(all, *o)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (r *memOrderRepo) Count(_ context.Context, _ filter.Predicate) (int64, error) {
	return int64(len(r.uow.store.orders)), nil
}

type memOrderItemRepo struct {
	uow *memUOW
}

func (r *memOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) error {
	prev := len(r.uow.store.items)
	r.uow.store.items = append(r.uow.store.items, items...)
	r.uow.undo = append(r.uow.undo, func() { r.uow.store.items = r.uow.store.items[:prev] })

	return nil
}

func (r *memOrderItemRepo) QueryByOrderIDs(_ context.Context, orderIDs []string) ([]orderitem.OrderItem, error) {
	wanted := map[string]struct{}{}
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}

	var result []orderitem.OrderItem
	for _, item := range r.uow.store.items {
		if _, ok := wanted[item.OrderID]; ok {
			result = append(result, item)
		}
	}

	return result, nil
}

type memOutboxRepo struct {
	uow *memUOW
}

func (r *memOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	prev := len(r.uow.store.events)
	r.uow.store.events = append(r.uow.store.events, msg)
	r.uow.undo = append(r.uow.undo, func() { r.uow.store.events = r.uow.store.events[:prev] })

	return nil
}

func (r *memOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return r.uow.store.events, nil
}

func (r *memOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func (r *memOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

func newTestService(store *memStore) *OrderService {
	return MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		return &memUOW{store: store}
	}))
}

func publishedProduct(id string, stock int, priceCents int64, cur currency.Currency) product.Product {
	return product.Product{
		ID:            id,
		Name:          "Product " + id,
		CategoryID:    "cat-1",
		PriceCents:    priceCents,
		PriceCurrency: cur,
		Stock:         stock,
		IsPublished:   true,
	}
}

func TestCheckoutReservesStockAndSnapshotsPrice(t *testing.T) {
	store := newMemStore(publishedProduct("p1", 5, 1299, currency.CurrencyUSD))
	svc := newTestService(store)

	placed, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines:           []reservation.Line{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, order.StatusCreated, placed.Status)
	assert.Equal(t, int64(3*1299), placed.TotalPriceCents)
	assert.Equal(t, currency.CurrencyUSD, placed.TotalPriceCurrency)
	require.Len(t, placed.OrderItems, 1)
	assert.Equal(t, "Product p1", placed.OrderItems[0].ProductTitle)
	assert.Equal(t, int64(1299), placed.OrderItems[0].PriceCents)
	assert.Equal(t, 3, placed.OrderItems[0].Quantity)

	assert.Equal(t, 2, store.products["p1"].Stock)

	require.Len(t, store.events, 1)
	assert.Equal(t, QueueOrderCreated, store.events[0].QueueName)
}

func TestCheckoutRollsBackWhenAnyLineFails(t *testing.T) {
	store := newMemStore(
		publishedProduct("a", 10, 500, currency.CurrencyRUB),
		publishedProduct("b", 0, 700, currency.CurrencyRUB),
	)
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines: []reservation.Line{
			{ProductID: "a", Quantity: 2},
			{ProductID: "b", Quantity: 1},
		},
	})

	var stockErr *reservation.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "b", stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Requested)

	assert.Equal(t, 10, store.products["a"].Stock, "successful line must be rolled back")
	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
	assert.Empty(t, store.events)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	store := newMemStore(publishedProduct("p1", 5, 100, currency.CurrencyRUB))
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines:           []reservation.Line{{ProductID: "ghost", Quantity: 1}},
	})

	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Empty(t, store.orders)
}

func TestCheckoutUnpublishedProduct(t *testing.T) {
	hidden := publishedProduct("p1", 5, 100, currency.CurrencyRUB)
	hidden.IsPublished = false
	store := newMemStore(hidden)
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines:           []reservation.Line{{ProductID: "p1", Quantity: 1}},
	})

	var unavailable *reservation.ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "p1", unavailable.ProductID)
	assert.Equal(t, 5, store.products["p1"].Stock)
}

func TestCheckoutMixedCurrencies(t *testing.T) {
	store := newMemStore(
		publishedProduct("a", 5, 100, currency.CurrencyRUB),
		publishedProduct("b", 5, 100, currency.CurrencyUSD),
	)
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines: []reservation.Line{
			{ProductID: "a", Quantity: 1},
			{ProductID: "b", Quantity: 1},
		},
	})

	require.ErrorIs(t, err, ErrMixedCurrencies)
	assert.Equal(t, 5, store.products["a"].Stock)
	assert.Equal(t, 5, store.products["b"].Stock)
}

func TestCheckoutRejectsMalformedRequestBeforeStoreAccess(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
	})
	require.ErrorIs(t, err, reservation.ErrEmptyRequest)

	_, err = svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines:           []reservation.Line{{ProductID: "p1", Quantity: 0}},
	})
	require.ErrorIs(t, err, reservation.ErrInvalidQuantity)

	assert.Equal(t, 0, store.begins, "validation failures must not open a transaction")
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	store := newMemStore(publishedProduct("p1", 1, 100, currency.CurrencyRUB))
	svc := newTestService(store)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Checkout(context.Background(), reservation.Request{
				CustomerID:      "u1",
				DeliveryAddress: "Lenina 1",
				Lines:           []reservation.Line{{ProductID: "p1", Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *reservation.InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "losers must fail with insufficient stock, got %v", err)
	}

	assert.Equal(t, 1, succeeded, "exactly one attempt may reserve the last unit")
	assert.Equal(t, 0, store.products["p1"].Stock)
	assert.Len(t, store.orders, 1)
}

func TestCancelOrderRestocksAndEmitsEvent(t *testing.T) {
	store := newMemStore(publishedProduct("p1", 5, 100, currency.CurrencyRUB))
	svc := newTestService(store)

	placed, err := svc.Checkout(context.Background(), reservation.Request{
		CustomerID:      "u1",
		DeliveryAddress: "Lenina 1",
		Lines:           []reservation.Line{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.products["p1"].Stock)

	cancelled, err := svc.CancelOrder(context.Background(), placed.ID)
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, store.products["p1"].Stock, "cancellation must restore every reserved unit")

	require.Len(t, store.events, 2)
	assert.Equal(t, QueueOrderCancelled, store.events[1].QueueName)

	_, err = svc.CancelOrder(context.Background(), placed.ID)
	require.ErrorIs(t, err, order.ErrAlreadyCancelled)
	assert.Equal(t, 5, store.products["p1"].Stock)
}

func TestGetOrdersAttachesItems(t *testing.T) {
	store := newMemStore(
		publishedProduct("a", 5, 100, currency.CurrencyRUB),
		publishedProduct("b", 5, 200, currency.CurrencyRUB),
	)
	svc := newTestService(store)

	for _, id := range []string{"a", "b"} {
		_, err := svc.Checkout(context.Background(), reservation.Request{
			CustomerID:      "u1",
			DeliveryAddress: "Lenina 1",
			Lines:           []reservation.Line{{ProductID: id, Quantity: 2}},
		})
		require.NoError(t, err)
	}

	result, err := svc.GetOrders(context.Background(), pagination.PageRequest{
		Page:    1,
		Limit:   10,
		Filters: map[string]string{},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Pagination.TotalItems)
	require.Len(t, result.Items, 2)
	for _, o := range result.Items {
		assert.Len(t, o.OrderItems, 1, "each order must carry its items")
	}
}

func TestCancelOrderUnknown(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.CancelOrder(context.Background(), "ghost")
	require.ErrorIs(t, err, order.ErrNotFound)
}
