package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/service/notification"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// GET /api/v1/notifications?unread=&limit=
func (h *NotificationHandler) List(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	ns, err := h.svc.List(c.Context(), claims.UserID, unreadOnly, limit)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newNotificationViews(ns))
}

// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.MarkRead(c.Context(), claims.UserID, notifID); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}
	return noContent(c)
}

// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	if err := h.svc.MarkAllRead(c.Context(), claims.UserID); err != nil {
		return internalError(c)
	}
	return noContent(c)
}
