package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerProfileRoutes(api fiber.Router, h *handler.ProfileHandler, authRequired fiber.Handler) {
	group := api.Group("/profile")
	group.Get("/", authRequired, h.Get)
	group.Patch("/", authRequired, h.Update)
	group.Post("/wallet", authRequired, h.LinkWallet)
}
