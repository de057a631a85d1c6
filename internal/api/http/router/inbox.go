package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerInboxRoutes(api fiber.Router, activityH *handler.ActivityHandler, notificationH *handler.NotificationHandler, authRequired fiber.Handler) {
	api.Get("/activity", authRequired, activityH.List)

	group := api.Group("/notifications")
	group.Get("/", authRequired, notificationH.List)
	group.Post("/:id/read", authRequired, notificationH.MarkRead)
	group.Post("/read-all", authRequired, notificationH.MarkAllRead)
}
