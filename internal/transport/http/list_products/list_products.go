package listproducts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetProducts(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[product.Product], error)
}

// ListProducts handles the paginated product listing request.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	req := pagination.ExtractPageRequest(r.URL.Query())

	result, err := service.GetProducts(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error listing products", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error sending response for list products", "error", err)
	}
}
