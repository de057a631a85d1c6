package handler

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/service/emergency"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type EmergencyHandler struct {
	svc emergency.Service
}

func NewEmergencyHandler(svc emergency.Service) *EmergencyHandler {
	return &EmergencyHandler{svc: svc}
}

// PUT /api/v1/emergency
func (h *EmergencyHandler) Upsert(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		BloodType         string                   `json:"blood_type"`
		Allergies         []string                 `json:"allergies"`
		MedicalConditions []string                 `json:"medical_conditions"`
		Contacts          []model.EmergencyContact `json:"contacts"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.Upsert(c.Context(), emergency.UpsertInput{
		UserID:            claims.UserID,
		BloodType:         body.BloodType,
		Allergies:         body.Allergies,
		MedicalConditions: body.MedicalConditions,
		Contacts:          body.Contacts,
	})
	if err != nil {
		return mapEmergencyError(c, err)
	}
	return ok(c, fiber.Map{
		"card": newEmergencyCardView(view.Card),
		"png":  base64.StdEncoding.EncodeToString(view.PNG),
	})
}

// GET /api/v1/emergency
func (h *EmergencyHandler) Get(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	view, err := h.svc.Get(c.Context(), claims.UserID)
	if err != nil {
		return mapEmergencyError(c, err)
	}
	return ok(c, fiber.Map{
		"card": newEmergencyCardView(view.Card),
		"png":  base64.StdEncoding.EncodeToString(view.PNG),
	})
}

// GET /api/v1/emergency/:code
// First responders hit this without authentication.
func (h *EmergencyHandler) Lookup(c fiber.Ctx) error {
	card, err := h.svc.Lookup(c.Context(), c.Params("code"))
	if err != nil {
		return mapEmergencyError(c, err)
	}
	return ok(c, newEmergencyCardView(*card))
}

func mapEmergencyError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, emergency.ErrCardNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, emergency.ErrInvalidCode):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
