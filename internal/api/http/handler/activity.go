package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/service/activity"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type ActivityHandler struct {
	svc activity.Service
}

func NewActivityHandler(svc activity.Service) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// GET /api/v1/activity?limit=
func (h *ActivityHandler) List(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	logs, err := h.svc.List(c.Context(), claims.UserID, limit)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newActivityViews(logs))
}
