package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/medvault/medvault_backend/internal/api/http/handler"
)

// Requester-side endpoints are public: hospitals and labs identify
// themselves by wallet address, not by a MedVault account.
func (r *Router) registerConsentRoutes(api fiber.Router, h *handler.ConsentHandler, authRequired fiber.Handler) {
	group := api.Group("/consent")

	// requester side
	group.Post("/requests", h.SubmitRequest)
	group.Get("/requests/outgoing", h.OutgoingRequests)
	group.Post("/scan", h.Scan)
	group.Get("/grants/incoming", h.IncomingGrants)
	group.Get("/grants/:id/resources", h.Resources)

	// patient side
	group.Get("/requests", authRequired, h.ListRequests)
	group.Post("/requests/:id/approve", authRequired, h.ApproveRequest)
	group.Post("/requests/:id/deny", authRequired, h.DenyRequest)
	group.Post("/qr", authRequired, h.IssueQR)
	group.Get("/grants", authRequired, h.ListGrants)
	group.Post("/grants/:id/approve", authRequired, h.ApproveGrant)
	group.Post("/grants/:id/deny", authRequired, h.DenyGrant)
	group.Post("/grants/:id/revoke", authRequired, h.Revoke)
}
