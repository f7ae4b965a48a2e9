package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/msaada/donation-platform/internal/auth"
	"github.com/msaada/donation-platform/internal/donation"
	"github.com/msaada/donation-platform/internal/project"
	"github.com/msaada/donation-platform/internal/stats"
	"github.com/msaada/donation-platform/internal/transport/middleware"
	"github.com/msaada/donation-platform/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, projectHandler *project.Handler, donationHandler *donation.Handler, webhookHandler *donation.WebhookHandler, statsHandler *stats.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Provider callback; must stay unauthenticated and always ack
		if webhookHandler != nil {
			r.Post("/mpesa/callback", webhookHandler.HandleCallback)
		}

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Public project browsing (no auth required)
		if projectHandler != nil {
			r.Get("/projects", projectHandler.ListProjects)
			r.Get("/projects/{id}", projectHandler.GetProject)
		}

		// Public donation flow
		if donationHandler != nil {
			r.Post("/donations", donationHandler.InitiateDonation)
			r.Get("/donations/{transactionID}/status", donationHandler.GetDonationStatus)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				pr.Get("/auth/me", authHandler.Me)

				if donationHandler != nil {
					pr.Get("/donations", donationHandler.ListDonations)
				}

				if projectHandler != nil {
					pr.Post("/projects", projectHandler.CreateProject)
					pr.Patch("/projects/{id}", projectHandler.UpdateProject)
				}

				if statsHandler != nil {
					pr.Get("/stats/dashboard", statsHandler.Dashboard)
				}

				// Super admin routes
				pr.Group(func(sr chi.Router) {
					sr.Use(authHandler.RequireSuperAdmin)

					if projectHandler != nil {
						sr.Delete("/projects/{id}", projectHandler.DeleteProject)
					}

					sr.Route("/admins", func(ar chi.Router) {
						ar.Post("/", authHandler.CreateAdmin)
						ar.Get("/", authHandler.ListAdmins)
						ar.Patch("/{id}/deactivate", authHandler.DeactivateAdmin)
					})
				})
			})
		}
	})
}
