package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/padrino-pos/api/internal/config"
	"github.com/padrino-pos/api/internal/handler"
	"github.com/padrino-pos/api/internal/service"
	"github.com/padrino-pos/api/internal/store"
	"github.com/padrino-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, svc *service.OrderService, st *store.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration. The UI runs on the same machine; only its dev
	// server origin is allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	orderHandler := handler.NewOrderHandler(svc, hub)
	orderHandler.RegisterRoutes(r)

	catalogHandler := handler.NewCatalogHandler(st)
	catalogHandler.RegisterRoutes(r)

	return r
}
