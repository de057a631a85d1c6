package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerInsuranceRoutes(api fiber.Router, h *handler.InsuranceHandler, authRequired fiber.Handler) {
	group := api.Group("/insurance")
	group.Get("/policies", authRequired, h.Policies)
	group.Get("/claims", authRequired, h.Claims)
}
