package cancelorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	CancelOrder(ctx context.Context, orderID string) (*order.Order, error)
}

// CancelOrder handles the compensating order cancellation request.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "order id is required", http.StatusBadRequest)

		return
	}

	cancelled, err := service.CancelOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error cancelling order", "order_id", orderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cancelled); err != nil {
		slog.Error("Error sending response for cancel order", "error", err)
	}
}
