package deleteproduct

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	DeleteProduct(ctx context.Context, id string) error
}

// DeleteProduct handles the soft-delete product request.
func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		http.Error(w, "product id is required", http.StatusBadRequest)

		return
	}

	if err := service.DeleteProduct(r.Context(), productID); err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error deleting product", "product_id", productID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
