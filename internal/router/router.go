package router

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/comedor-pos/api/internal/config"
	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/events"
	"github.com/comedor-pos/api/internal/handler"
	mw "github.com/comedor-pos/api/internal/middleware"
	"github.com/comedor-pos/api/internal/service"
	"github.com/comedor-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed. Domain events
// go to pub; pass the hub itself when no other sink is configured.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(ctx); err != nil {
			log.Printf("ERROR: health check database: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","database":"down"}`))
			return
		}
		if p, ok := pub.(events.Pinger); ok {
			if err := p.Ping(); err != nil {
				log.Printf("ERROR: health check events: %v", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable","events":"down"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, cfg.DeliveryFee, cfg.Location)
	inventoryService := service.NewInventoryService(pool, func(db database.DBTX) service.InventoryStore {
		return database.New(db)
	})
	dashboardService := service.NewDashboardService(queries)

	userHandler := handler.NewUserHandler(queries)
	menuHandler := handler.NewMenuHandler(queries, pub)
	orderHandler := handler.NewOrderHandler(orderService, queries, pub, cfg.Location)
	paymentHandler := handler.NewPaymentHandler(queries, pool, func(db database.DBTX) handler.PaymentStore {
		return database.New(db)
	}, pub)
	expenseHandler := handler.NewExpenseHandler(queries, pub, cfg.Location)
	inventoryHandler := handler.NewInventoryHandler(queries, inventoryService, pub)
	taskHandler := handler.NewTaskHandler(queries, pub, cfg.Location)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cfg.Location)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Any staff member
		r.Get("/users/delivery", userHandler.ListDelivery)

		r.Route("/menu", func(r chi.Router) {
			menuHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				menuHandler.RegisterWriteRoutes(r)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			taskHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				taskHandler.RegisterWriteRoutes(r)
			})
		})

		// Kitchen and delivery staff move orders along; only the floor creates,
		// cancels and dispatches them.
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)
			r.Patch("/{id}/status", orderHandler.UpdateStatus)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleWaiter))
				r.Post("/", orderHandler.Create)
				r.Delete("/{id}", orderHandler.Cancel)
				r.Patch("/{id}/delivery-person", orderHandler.AssignDeliveryPerson)
			})

			// Payments (nested under orders)
			r.Route("/{id}/payments", func(r chi.Router) {
				r.Get("/", paymentHandler.List)
				r.With(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleWaiter, enum.UserRoleDelivery)).
					Post("/", paymentHandler.Add)
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleKitchen))
			inventoryHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				inventoryHandler.RegisterWriteRoutes(r)
			})
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Route("/users", userHandler.RegisterRoutes)
			r.Route("/expenses", expenseHandler.RegisterRoutes)
			r.Route("/dashboard", dashboardHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
