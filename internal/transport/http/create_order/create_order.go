package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	Checkout(ctx context.Context, req reservation.Request) (*order.Order, error)
}

// lineInCheckoutRequest represents one line of a checkout request.
type lineInCheckoutRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gt=0"`
}

// checkoutRequest represents a checkout request.
type checkoutRequest struct {
	CustomerID      string                  `json:"customerId"      validate:"required"`
	DeliveryAddress string                  `json:"deliveryAddress" validate:"required"`
	Items           []lineInCheckoutRequest `json:"items"           validate:"required,min=1,dive"`
}

// Validate validates the checkout request.
func (r *checkoutRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts checkoutRequest to reservation.Request, preserving line
// order as submitted.
func (r *checkoutRequest) toModel() reservation.Request {
	lines := make([]reservation.Line, len(r.Items))
	for i, item := range r.Items {
		lines[i] = reservation.Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return reservation.Request{
		CustomerID:      r.CustomerID,
		DeliveryAddress: r.DeliveryAddress,
		Lines:           lines,
	}
}

// Checkout handles the checkout request.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	checkoutReq := checkoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&checkoutReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for checkout", "error", err)

		return
	}

	if err := checkoutReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for checkout", "error", err)

		return
	}

	placed, err := service.Checkout(r.Context(), checkoutReq.toModel())
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error performing checkout", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(placed); err != nil {
		slog.Error("Error sending response for checkout", "error", err)
	}
}
