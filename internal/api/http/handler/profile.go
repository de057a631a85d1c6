package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/service/profile"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	p, err := h.svc.Get(c.Context(), claims.UserID)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, newProfileView(*p))
}

// PATCH /api/v1/profile
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		FullName string `json:"full_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.UpdateName(c.Context(), claims.UserID, body.FullName)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, newProfileView(*p))
}

// POST /api/v1/profile/wallet
func (h *ProfileHandler) LinkWallet(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.LinkWallet(c.Context(), claims.UserID, body.WalletAddress)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, newProfileView(*p))
}

func mapProfileError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, profile.ErrInvalidWallet):
		return badRequest(c, err.Error())
	case errors.Is(err, profile.ErrWalletTaken):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}
