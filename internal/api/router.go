package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/logout", apiHandler.LogoutHandler)
			r.Get("/messages", apiHandler.GetMessagesHandler)
			r.Post("/messages", apiHandler.PostMessageHandler)
			r.Post("/purchase", apiHandler.PurchaseHandler)

			// Raising the admin overlay requires an authenticated session.
			r.Post("/admin/login", apiHandler.AdminLoginHandler)

			// Admin-overlay routes
			r.Group(func(r chi.Router) {
				r.Use(apiHandler.AdminOnlyMiddleware)

				r.Get("/admin/stats", apiHandler.StatsHandler)
				r.Get("/admin/users", apiHandler.ListUsersHandler)
				r.Get("/admin/requests", apiHandler.ListRequestsHandler)
				r.Patch("/admin/requests/{requestID}", apiHandler.UpdateRequestHandler)
				r.Get("/admin/export", apiHandler.ExportHandler)
				r.Post("/admin/import", apiHandler.ImportHandler)
			})
		})
	})

	return r
}
