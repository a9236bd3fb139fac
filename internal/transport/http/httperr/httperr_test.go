package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "insufficient stock",
			err:  &reservation.InsufficientStockError{ProductID: "p1", Requested: 2},
			want: http.StatusConflict,
		},
		{
			name: "product unavailable",
			err:  &reservation.ProductUnavailableError{ProductID: "p1"},
			want: http.StatusConflict,
		},
		{
			name: "already cancelled",
			err:  order.ErrAlreadyCancelled,
			want: http.StatusConflict,
		},
		{
			name: "wrapped product not found",
			err:  fmt.Errorf("%w: p1", product.ErrNotFound),
			want: http.StatusNotFound,
		},
		{
			name: "order not found",
			err:  order.ErrNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "invalid page",
			err:  pagination.ErrInvalidPage,
			want: http.StatusBadRequest,
		},
		{
			name: "invalid limit",
			err:  pagination.ErrInvalidLimit,
			want: http.StatusBadRequest,
		},
		{
			name: "empty reservation",
			err:  reservation.ErrEmptyRequest,
			want: http.StatusBadRequest,
		},
		{
			name: "invalid quantity",
			err:  fmt.Errorf("%w: product p1", reservation.ErrInvalidQuantity),
			want: http.StatusBadRequest,
		},
		{
			name: "store unavailable",
			err:  postgres.Unavailable("failed to query products", errors.New("dial error")),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "unknown error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}
