package productstats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetProductStats(ctx context.Context) (product.Stats, error)
}

// ProductStats handles the product stock statistics request.
func ProductStats(w http.ResponseWriter, r *http.Request, service service) {
	stats, err := service.GetProductStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error getting product stats", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		slog.Error("Error sending response for product stats", "error", err)
	}
}
