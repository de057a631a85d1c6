package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, h *handler.AppointmentHandler, authRequired fiber.Handler) {
	api.Get("/hospitals", authRequired, h.Hospitals)

	group := api.Group("/appointments")
	group.Post("/", authRequired, h.Book)
	group.Get("/", authRequired, h.List)
	group.Delete("/:id", authRequired, h.Cancel)
}
