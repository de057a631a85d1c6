package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerBillRoutes(api fiber.Router, h *handler.BillHandler, authRequired fiber.Handler) {
	group := api.Group("/bills")
	group.Post("/", authRequired, h.Create)
	group.Get("/", authRequired, h.List)
	group.Post("/:id/pay", authRequired, h.Pay)
}
