package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/service/donation"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type DonationHandler struct {
	svc donation.Service
}

func NewDonationHandler(svc donation.Service) *DonationHandler {
	return &DonationHandler{svc: svc}
}

// POST /api/v1/campaigns
func (h *DonationHandler) CreateCampaign(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		HospitalID      string     `json:"hospital_id"`
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		IllnessCategory string     `json:"illness_category"`
		PatientStory    string     `json:"patient_story"`
		PatientAge      int        `json:"patient_age"`
		TargetAmount    int64      `json:"target_amount"`
		UrgencyLevel    string     `json:"urgency_level"`
		EndDate         *time.Time `json:"end_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	hospitalID, err := uuid.Parse(body.HospitalID)
	if err != nil {
		return badRequest(c, "hospital_id is not a valid id")
	}
	if body.Title == "" {
		return badRequest(c, "title is required")
	}

	camp, err := h.svc.CreateCampaign(c.Context(), donation.CreateCampaignInput{
		PatientID:       claims.UserID,
		HospitalID:      hospitalID,
		Title:           body.Title,
		Description:     body.Description,
		IllnessCategory: body.IllnessCategory,
		PatientStory:    body.PatientStory,
		PatientAge:      body.PatientAge,
		TargetAmount:    body.TargetAmount,
		UrgencyLevel:    model.UrgencyLevel(body.UrgencyLevel),
		EndDate:         body.EndDate,
	})
	if err != nil {
		return mapDonationError(c, err)
	}
	return created(c, newCampaignView(*camp))
}

// GET /api/v1/campaigns?status=
func (h *DonationHandler) ListCampaigns(c fiber.Ctx) error {
	status := model.CampaignStatus(c.Query("status", string(model.CampaignActive)))

	cs, err := h.svc.ListCampaigns(c.Context(), status)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newCampaignViews(cs))
}

// GET /api/v1/campaigns/:id
func (h *DonationHandler) GetCampaign(c fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	camp, err := h.svc.GetCampaign(c.Context(), campaignID)
	if err != nil {
		return mapDonationError(c, err)
	}
	return ok(c, newCampaignView(*camp))
}

// POST /api/v1/campaigns/:id/verify
func (h *DonationHandler) VerifyCampaign(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	if err := h.svc.VerifyCampaign(c.Context(), campaignID, claims.UserID); err != nil {
		return mapDonationError(c, err)
	}
	return noContent(c)
}

// POST /api/v1/campaigns/:id/donate
func (h *DonationHandler) Donate(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	var body struct {
		Amount      int64  `json:"amount"`
		Message     string `json:"message"`
		IsAnonymous bool   `json:"is_anonymous"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.Donate(c.Context(), donation.DonateInput{
		CampaignID:  campaignID,
		DonorID:     claims.UserID,
		Amount:      body.Amount,
		Message:     body.Message,
		IsAnonymous: body.IsAnonymous,
	})
	if err != nil {
		return mapDonationError(c, err)
	}
	return created(c, newDonationView(*d))
}

// GET /api/v1/campaigns/:id/donations
func (h *DonationHandler) CampaignDonations(c fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	ds, err := h.svc.CampaignDonations(c.Context(), campaignID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newDonationViews(ds))
}

// GET /api/v1/donations
func (h *DonationHandler) History(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	ds, err := h.svc.DonorHistory(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newDonationViews(ds))
}

func mapDonationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, donation.ErrCampaignNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, donation.ErrCampaignNotActive):
		return conflict(c, err.Error())
	case errors.Is(err, donation.ErrDonorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, donation.ErrRecipientNoWallet):
		return conflict(c, err.Error())
	case errors.Is(err, donation.ErrInsufficientBalance):
		return paymentRequired(c, err.Error())
	case errors.Is(err, donation.ErrInvalidAmount), errors.Is(err, donation.ErrInvalidTarget):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
