package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/service/bill"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type BillHandler struct {
	svc bill.Service
}

func NewBillHandler(svc bill.Service) *BillHandler {
	return &BillHandler{svc: svc}
}

// POST /api/v1/bills
func (h *BillHandler) Create(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		HospitalID  string `json:"hospital_id"`
		Amount      int64  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	in := bill.CreateInput{
		UserID:      claims.UserID,
		Amount:      body.Amount,
		Category:    body.Category,
		Description: body.Description,
	}
	if body.HospitalID != "" {
		id, err := uuid.Parse(body.HospitalID)
		if err != nil {
			return badRequest(c, "hospital_id is not a valid id")
		}
		in.HospitalID = &id
	}

	b, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return mapBillError(c, err)
	}
	return created(c, newBillView(*b))
}

// GET /api/v1/bills
func (h *BillHandler) List(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	bs, err := h.svc.List(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newBillViews(bs))
}

// POST /api/v1/bills/:id/pay
func (h *BillHandler) Pay(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	billID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid bill id")
	}

	result, err := h.svc.Pay(c.Context(), claims.UserID, billID)
	if err != nil {
		return mapBillError(c, err)
	}
	return ok(c, fiber.Map{
		"bill":        newBillView(result.Bill),
		"new_balance": result.NewBalance,
	})
}

func mapBillError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, bill.ErrBillNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, bill.ErrAlreadyPaid):
		return conflict(c, err.Error())
	case errors.Is(err, bill.ErrInsufficientBalance):
		return paymentRequired(c, err.Error())
	case errors.Is(err, bill.ErrInvalidAmount):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
