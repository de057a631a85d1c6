package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/service/insurance"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type InsuranceHandler struct {
	svc insurance.Service
}

func NewInsuranceHandler(svc insurance.Service) *InsuranceHandler {
	return &InsuranceHandler{svc: svc}
}

// GET /api/v1/insurance/policies
func (h *InsuranceHandler) Policies(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	ps, err := h.svc.ListPolicies(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newPolicyViews(ps))
}

// GET /api/v1/insurance/claims
func (h *InsuranceHandler) Claims(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	cs, err := h.svc.ListClaims(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newClaimViews(cs))
}
