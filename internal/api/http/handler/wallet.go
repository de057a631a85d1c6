package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/service/wallet"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type WalletHandler struct {
	svc wallet.Service
}

func NewWalletHandler(svc wallet.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// GET /api/v1/wallet?limit=
func (h *WalletHandler) Overview(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	ov, err := h.svc.Overview(c.Context(), claims.UserID, limit)
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{
		"balance":      ov.Balance,
		"transactions": newTransactionViews(ov.Transactions),
	})
}

// POST /api/v1/wallet/faucet
func (h *WalletHandler) Faucet(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	balance, err := h.svc.Faucet(c.Context(), claims.UserID)
	if err != nil {
		return mapWalletError(c, err)
	}
	return ok(c, fiber.Map{"balance": balance})
}

// POST /api/v1/wallet/purchase
func (h *WalletHandler) StartPurchase(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	start, err := h.svc.StartPurchase(c.Context(), claims.UserID, body.Amount)
	if err != nil {
		return mapWalletError(c, err)
	}
	return created(c, fiber.Map{
		"order":   newPurchaseView(start.Order),
		"pay_url": start.PayURL,
	})
}

// GET /api/v1/wallet/purchase/callback?Authority=&Status=
// The gateway redirects the payer here; no session is attached.
func (h *WalletHandler) PurchaseCallback(c fiber.Ctx) error {
	authority := c.Query("Authority")
	if authority == "" {
		return badRequest(c, "Authority is required")
	}
	paid := c.Query("Status") == "OK"

	order, err := h.svc.CompletePurchase(c.Context(), authority, paid)
	if err != nil {
		if errors.Is(err, wallet.ErrPaymentIncomplete) && order != nil {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": err.Error(),
				"data":  newPurchaseView(*order),
			})
		}
		return mapWalletError(c, err)
	}
	return ok(c, newPurchaseView(*order))
}

func mapWalletError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wallet.ErrFaucetCooldown):
		return tooManyRequests(c, err.Error())
	case errors.Is(err, wallet.ErrInvalidAmount):
		return badRequest(c, err.Error())
	case errors.Is(err, wallet.ErrPurchaseNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, wallet.ErrPurchaseSettled):
		return conflict(c, err.Error())
	case errors.Is(err, wallet.ErrPaymentIncomplete):
		return paymentRequired(c, err.Error())
	default:
		return internalError(c)
	}
}
