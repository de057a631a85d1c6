package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/service/appointment"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// GET /api/v1/hospitals?city=
func (h *AppointmentHandler) Hospitals(c fiber.Ctx) error {
	hs, err := h.svc.Hospitals(c.Context(), c.Query("city"))
	if err != nil {
		return internalError(c)
	}
	return ok(c, newHospitalViews(hs))
}

// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		HospitalID string    `json:"hospital_id"`
		Date       time.Time `json:"date"`
		Reason     string    `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	hospitalID, err := uuid.Parse(body.HospitalID)
	if err != nil {
		return badRequest(c, "hospital_id is not a valid id")
	}

	a, err := h.svc.Book(c.Context(), appointment.BookInput{
		UserID:     claims.UserID,
		HospitalID: hospitalID,
		Date:       body.Date,
		Reason:     body.Reason,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, newAppointmentView(*a))
}

// GET /api/v1/appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	as, err := h.svc.List(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newAppointmentViews(as))
}

// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	if err := h.svc.Cancel(c.Context(), claims.UserID, apptID); err != nil {
		return mapAppointmentError(c, err)
	}
	return noContent(c)
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrHospitalNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrPastDate):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrSlotConflict):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrNotScheduled):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}
