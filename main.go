package main

//go:generate swag init

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mkoskinen/laskutus/db"
	_ "github.com/mkoskinen/laskutus/docs"
	"github.com/mkoskinen/laskutus/finance"
	"github.com/mkoskinen/laskutus/handlers"
)

// @title           Laskutus API
// @version         1.0.0
// @description     Invoicing backend: customers, catalog, orders, invoices, credit notes and Finvoice export.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	// Local .env is optional
	godotenv.Load()

	// Configure structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, err := db.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Shared DB and engine for handlers
	handlers.DB = database
	handlers.Engine = finance.NewService(database, finance.ConfigFromEnv())

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.BasicAuth)

		// Customers
		r.Get("/customers", handlers.ListCustomers)
		r.Post("/customers", handlers.CreateCustomer)
		r.Get("/customers/{id}", handlers.GetCustomer)
		r.Put("/customers/{id}", handlers.UpdateCustomer)
		r.Delete("/customers/{id}", handlers.DeleteCustomer)

		// Catalog items
		r.Get("/items", handlers.ListItems)
		r.Post("/items", handlers.CreateItem)
		r.Get("/items/{id}", handlers.GetItem)
		r.Put("/items/{id}", handlers.UpdateItem)
		r.Delete("/items/{id}", handlers.DeleteItem)

		// Orders
		r.Get("/orders", handlers.ListOrders)
		r.Post("/orders", handlers.CreateOrder)
		r.Get("/orders/{id}", handlers.GetOrder)
		r.Post("/orders/{id}/invoice", handlers.InvoiceOrder)

		// Invoices and credit notes
		r.Get("/invoices", handlers.ListInvoices)
		r.Post("/invoices", handlers.CreateInvoice)
		r.Get("/invoices/{id}", handlers.GetInvoice)
		r.Put("/invoices/{id}", handlers.UpdateInvoice)
		r.Post("/invoices/{id}/status", handlers.UpdateInvoiceStatus)
		r.Post("/invoices/{id}/credit-note", handlers.CreateCreditNote)
		r.Get("/invoices/{id}/finvoice", handlers.ExportFinvoice)

		// Seller profile
		r.Get("/seller", handlers.GetSeller)
		r.Put("/seller", handlers.UpdateSeller)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
