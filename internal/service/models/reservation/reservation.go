package reservation

import (
	"errors"
	"fmt"
)

// Status is the state of one checkout attempt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusReserving  Status = "reserving"
	StatusCommitted  Status = "committed"
	StatusFailed     Status = "failed"
)

var (
	ErrEmptyRequest    = errors.New("reservation request must contain at least one line")
	ErrInvalidQuantity = errors.New("reservation quantity must be positive")
)

// Line is one requested (product, quantity) pair.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Request is an ordered, all-or-nothing set of lines submitted as a single
// checkout. Lines are processed in submission order so that lock ordering and
// rollback order stay deterministic across concurrent requests.
type Request struct {
	CustomerID      string `json:"customerId"`
	DeliveryAddress string `json:"deliveryAddress"`
	Lines           []Line `json:"lines"`
}

// Validate rejects malformed requests before any store access.
func (r Request) Validate() error {
	if len(r.Lines) == 0 {
		return ErrEmptyRequest
	}
	for _, line := range r.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
	}

	return nil
}

// Attempt tracks the state of one checkout attempt.
type Attempt struct {
	Status Status
}

// NewAttempt starts an attempt in the pending state.
func NewAttempt() *Attempt {
	return &Attempt{Status: StatusPending}
}

// Advance moves the attempt to the next state.
func (a *Attempt) Advance(next Status) {
	a.Status = next
}

// InsufficientStockError reports the first line whose conditional decrement
// affected zero rows.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested %d)", e.ProductID, e.Requested)
}

// ProductUnavailableError reports a line whose product exists but is not
// published for sale.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available for purchase", e.ProductID)
}
