package httperr

import (
	"errors"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
)

// Status maps service layer errors to HTTP status codes.
func Status(err error) int {
	var insufficientStock *reservation.InsufficientStockError
	var unavailableProduct *reservation.ProductUnavailableError

	switch {
	case errors.As(err, &insufficientStock):
		return http.StatusConflict
	case errors.As(err, &unavailableProduct):
		return http.StatusConflict
	case errors.Is(err, order.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, product.ErrNotFound), errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pagination.ErrInvalidPage),
		errors.Is(err, pagination.ErrInvalidLimit),
		errors.Is(err, reservation.ErrEmptyRequest),
		errors.Is(err, reservation.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, postgres.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
