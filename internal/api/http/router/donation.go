package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

func (r *Router) registerDonationRoutes(api fiber.Router, h *handler.DonationHandler, authRequired fiber.Handler) {
	group := api.Group("/campaigns")
	group.Post("/", authRequired, h.CreateCampaign)
	group.Get("/", h.ListCampaigns)
	group.Get("/:id", h.GetCampaign)
	group.Post("/:id/verify", authRequired, h.VerifyCampaign)
	group.Post("/:id/donate", authRequired, h.Donate)
	group.Get("/:id/donations", h.CampaignDonations)

	api.Get("/donations", authRequired, h.History)
}
