package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/category"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/pagination"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/reservation"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	cancelorder "github.com/corray333/backend-labs/shop/internal/transport/http/cancel_order"
	createorder "github.com/corray333/backend-labs/shop/internal/transport/http/create_order"
	createproduct "github.com/corray333/backend-labs/shop/internal/transport/http/create_product"
	deleteproduct "github.com/corray333/backend-labs/shop/internal/transport/http/delete_product"
	listcategories "github.com/corray333/backend-labs/shop/internal/transport/http/list_categories"
	listorders "github.com/corray333/backend-labs/shop/internal/transport/http/list_orders"
	listproducts "github.com/corray333/backend-labs/shop/internal/transport/http/list_products"
	listusers "github.com/corray333/backend-labs/shop/internal/transport/http/list_users"
	productstats "github.com/corray333/backend-labs/shop/internal/transport/http/product_stats"
	"github.com/corray333/backend-labs/shop/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/shop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type orderService interface {
	Checkout(ctx context.Context, req reservation.Request) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*order.Order, error)
	GetOrders(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[order.Order], error)
}

type catalogService interface {
	GetProducts(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[product.Product], error)
	GetCategories(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[category.Category], error)
	CreateProduct(ctx context.Context, p product.Product) (*product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProductStats(ctx context.Context) (product.Stats, error)
}

type userService interface {
	GetUsers(ctx context.Context, req pagination.PageRequest) (*pagination.PageResult[user.User], error)
}

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	orderSvc   orderService
	catalogSvc catalogService
	userSvc    userService
}

func NewHTTPTransport(orderSvc orderService, catalogSvc catalogService, userSvc userService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:     server,
		router:     router,
		orderSvc:   orderSvc,
		catalogSvc: catalogSvc,
		userSvc:    userSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Get("/products/stats", h.productStats)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/categories", h.listCategories)
		r.Get("/users", h.listUsers)

		r.Get("/orders", h.listOrders)
		r.Post("/orders/checkout", h.checkout)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
	})
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r, h.catalogSvc)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	createproduct.CreateProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) productStats(w http.ResponseWriter, r *http.Request) {
	productstats.ProductStats(w, r, h.catalogSvc)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	deleteproduct.DeleteProduct(w, r, h.catalogSvc)
}

func (h *HTTPTransport) listCategories(w http.ResponseWriter, r *http.Request) {
	listcategories.ListCategories(w, r, h.catalogSvc)
}

func (h *HTTPTransport) listUsers(w http.ResponseWriter, r *http.Request) {
	listusers.ListUsers(w, r, h.userSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	createorder.Checkout(w, r, h.orderSvc)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.orderSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
