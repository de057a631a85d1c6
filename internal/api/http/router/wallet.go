package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerWalletRoutes(api fiber.Router, h *handler.WalletHandler, authRequired fiber.Handler) {
	group := api.Group("/wallet")
	group.Get("/", authRequired, h.Overview)
	group.Post("/faucet", authRequired, h.Faucet)
	group.Post("/purchase", authRequired, h.StartPurchase)
	// The gateway redirects the payer's browser here; no session available.
	group.Get("/purchase/callback", h.PurchaseCallback)
}
