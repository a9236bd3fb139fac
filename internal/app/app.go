package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/shop/internal/otel"
	"github.com/corray333/backend-labs/shop/internal/service/services/catalogsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/usersvc"
	httptransport "github.com/corray333/backend-labs/shop/internal/transport/http"
	"github.com/corray333/backend-labs/shop/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	catalogSvc     *catalogsvc.CatalogService
	userSvc        *usersvc.UserService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.Controller
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
	)
	userSvc := usersvc.MustNewUserService(
		usersvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, catalogSvc, userSvc)
	transport.RegisterRoutes()

	outboxWorker := outbox.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)
	if err := outboxWorker.DeclareQueues(
		ordersvc.QueueOrderCreated,
		ordersvc.QueueOrderCancelled,
	); err != nil {
		panic("failed to declare outbox queues: " + err.Error())
	}

	return &App{
		orderSvc:       orderSvc,
		catalogSvc:     catalogSvc,
		userSvc:        userSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()
	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped")

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
