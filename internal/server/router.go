// Package server wires the HTTP surface: routes, authentication middleware,
// and CORS.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	accounthandler "smartbox-platform/backend/internal/account/handler"
	adminhandler "smartbox-platform/backend/internal/admin/handler"
	healthhandler "smartbox-platform/backend/internal/health/handler"
	ownershiphandler "smartbox-platform/backend/internal/ownership/handler"
	readinghandler "smartbox-platform/backend/internal/reading/handler"
	"smartbox-platform/backend/internal/security"
	"smartbox-platform/backend/internal/server/middleware"
)

// Handlers groups the route handlers the router mounts. Health may be nil in
// tools that only exercise the API routes.
type Handlers struct {
	Auth      *accounthandler.AuthHandler
	Readings  *readinghandler.ReadingHandler
	Ownership *ownershiphandler.OwnershipHandler
	Admin     *adminhandler.AdminHandler
	Health    *healthhandler.HealthHandler
}

// NewRouter builds the full route table. corsOrigins lists the allowed
// browser origins; empty means same-origin use only.
func NewRouter(h Handlers, tokens *security.TokenProvider, corsOrigins []string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	guard := middleware.RequireAuth(tokens)

	api := r.Group("/api")
	{
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)

		// Public: box ids act as read capabilities.
		api.GET("/data/:box_id", h.Readings.GetBoxData)
		api.GET("/export/:box_id", h.Readings.Export)

		api.GET("/dashboard", guard, h.Readings.Dashboard)

		api.POST("/boxes/register", guard, h.Ownership.Claim)
		api.GET("/boxes", guard, h.Ownership.List)

		api.GET("/admin/users", guard, h.Admin.PendingUsers)
		api.POST("/admin/approve/:id", guard, h.Admin.Approve)
		api.GET("/admin/devices", guard, h.Admin.Devices)

		if h.Health != nil {
			api.GET("/health", h.Health.Check)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
