package listusers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetUsers(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[user.User], error)
}

// ListUsers handles the paginated user listing request.
func ListUsers(w http.ResponseWriter, r *http.Request, service service) {
	req := pagination.ExtractPageRequest(r.URL.Query())

	result, err := service.GetUsers(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error listing users", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error sending response for list users", "error", err)
	}
}
