package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerEmergencyRoutes(api fiber.Router, h *handler.EmergencyHandler, authRequired fiber.Handler) {
	group := api.Group("/emergency")
	group.Put("/", authRequired, h.Upsert)
	group.Get("/", authRequired, h.Get)
	// first-responder lookup by printed code
	group.Get("/:code", h.Lookup)
}
