package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerRecordRoutes(api fiber.Router, h *handler.RecordHandler, authRequired fiber.Handler) {
	group := api.Group("/records")
	group.Post("/", authRequired, h.Create)
	group.Get("/", authRequired, h.List)
	group.Get("/:id", authRequired, h.Get)
	group.Get("/:id/attachment", authRequired, h.Attachment)
	group.Delete("/:id", authRequired, h.Delete)
}
