package createproduct

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/currency"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/transport/http/httperr"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateProduct(ctx context.Context, p product.Product) (*product.Product, error)
}

// createProductRequest represents a create product request.
type createProductRequest struct {
	Name          string `json:"name"          validate:"required"`
	Description   string `json:"description"`
	CategoryID    string `json:"categoryId"    validate:"required"`
	PriceCents    int64  `json:"priceCents"    validate:"gt=0"`
	PriceCurrency string `json:"priceCurrency" validate:"required"`
	Stock         int    `json:"stock"         validate:"gte=0"`
	IsPublished   bool   `json:"isPublished"`
}

// Validate validates the create product request.
func (r *createProductRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createProductRequest to product.Product.
func (r *createProductRequest) toModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(r.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		Name:          r.Name,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		PriceCents:    r.PriceCents,
		PriceCurrency: cur,
		Stock:         r.Stock,
		IsPublished:   r.IsPublished,
	}, nil
}

// CreateProduct handles the create product request.
func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	productReq := createProductRequest{}
	if err := json.NewDecoder(r.Body).Decode(&productReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create product", "error", err)

		return
	}

	if err := productReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create product", "error", err)

		return
	}

	model, err := productReq.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error converting create product request to model", "error", err)

		return
	}

	created, err := service.CreateProduct(r.Context(), *model)
	if err != nil {
		http.Error(w, err.Error(), httperr.Status(err))
		slog.Error("Error creating product", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create product", "error", err)
	}
}
