package handler

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/service/consent"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
	"github.com/medvault/medvault_backend/pkg/qr"
)

type ConsentHandler struct {
	svc consent.Service
}

func NewConsentHandler(svc consent.Service) *ConsentHandler {
	return &ConsentHandler{svc: svc}
}

// ---------------------------------------------------------------------------
// Requester side (unauthenticated, wallet-identified)
// ---------------------------------------------------------------------------

// POST /api/v1/consent/requests
func (h *ConsentHandler) SubmitRequest(c fiber.Ctx) error {
	var body struct {
		PatientWallet   string `json:"patient_wallet"`
		RequesterWallet string `json:"requester_wallet"`
		RequesterName   string `json:"requester_name"`
		ResourceType    string `json:"resource_type"`
		Reason          string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PatientWallet == "" || body.RequesterWallet == "" {
		return badRequest(c, "patient_wallet and requester_wallet are required")
	}

	req, err := h.svc.SubmitRequest(c.Context(), consent.SubmitRequestInput{
		PatientWallet:   body.PatientWallet,
		RequesterWallet: body.RequesterWallet,
		RequesterName:   body.RequesterName,
		ResourceType:    model.ResourceType(body.ResourceType),
		Reason:          body.Reason,
	})
	if err != nil {
		return mapConsentError(c, err)
	}
	return created(c, newAccessRequestView(*req))
}

// GET /api/v1/consent/requests/outgoing?wallet=
func (h *ConsentHandler) OutgoingRequests(c fiber.Ctx) error {
	wallet := c.Query("wallet")
	if wallet == "" {
		return badRequest(c, "wallet is required")
	}

	reqs, err := h.svc.ListRequestsForRequester(c.Context(), wallet)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newAccessRequestViews(reqs))
}

// POST /api/v1/consent/scan
func (h *ConsentHandler) Scan(c fiber.Ctx) error {
	var body struct {
		Payload         string `json:"payload"`
		RequesterWallet string `json:"requester_wallet"`
		RequesterName   string `json:"requester_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Payload == "" || body.RequesterWallet == "" {
		return badRequest(c, "payload and requester_wallet are required")
	}

	g, err := h.svc.ScanGrant(c.Context(), consent.ScanGrantInput{
		Payload:         body.Payload,
		RequesterWallet: body.RequesterWallet,
		RequesterName:   body.RequesterName,
	})
	if err != nil {
		return mapConsentError(c, err)
	}
	return created(c, newAccessGrantView(*g))
}

// GET /api/v1/consent/grants/incoming?wallet=
func (h *ConsentHandler) IncomingGrants(c fiber.Ctx) error {
	wallet := c.Query("wallet")
	if wallet == "" {
		return badRequest(c, "wallet is required")
	}

	gs, err := h.svc.ListGrantsForRecipient(c.Context(), wallet)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newAccessGrantViews(gs))
}

// GET /api/v1/consent/grants/:id/resources?wallet=
func (h *ConsentHandler) Resources(c fiber.Ctx) error {
	wallet := c.Query("wallet")
	if wallet == "" {
		return badRequest(c, "wallet is required")
	}
	grantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid grant id")
	}

	res, err := h.svc.SharedResources(c.Context(), wallet, grantID)
	if err != nil {
		return mapConsentError(c, err)
	}
	return ok(c, fiber.Map{
		"grant":        newAccessGrantView(res.Grant),
		"records":      newRecordViews(res.Records),
		"bills":        newBillViews(res.Bills),
		"appointments": newAppointmentViews(res.Appointments),
	})
}

// ---------------------------------------------------------------------------
// Patient side (authenticated)
// ---------------------------------------------------------------------------

// GET /api/v1/consent/requests
func (h *ConsentHandler) ListRequests(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	reqs, err := h.svc.ListRequestsForPatient(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newAccessRequestViews(reqs))
}

// POST /api/v1/consent/requests/:id/approve
func (h *ConsentHandler) ApproveRequest(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var body struct {
		Signature string `json:"signature"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	g, err := h.svc.ApproveRequest(c.Context(), claims.UserID, requestID, body.Signature)
	if err != nil {
		return mapConsentError(c, err)
	}
	return ok(c, newAccessGrantView(*g))
}

// POST /api/v1/consent/requests/:id/deny
func (h *ConsentHandler) DenyRequest(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	if err := h.svc.DenyRequest(c.Context(), claims.UserID, requestID); err != nil {
		return mapConsentError(c, err)
	}
	return noContent(c)
}

// POST /api/v1/consent/qr
func (h *ConsentHandler) IssueQR(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		RecordIDs []string `json:"record_ids"`
		ImageSize int      `json:"image_size"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	recordIDs := make([]uuid.UUID, 0, len(body.RecordIDs))
	for _, raw := range body.RecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "record_ids contains an invalid id")
		}
		recordIDs = append(recordIDs, id)
	}

	issued, err := h.svc.IssueQR(c.Context(), consent.IssueQRInput{
		PatientID: claims.UserID,
		RecordIDs: recordIDs,
		ImageSize: body.ImageSize,
	})
	if err != nil {
		return mapConsentError(c, err)
	}
	return created(c, fiber.Map{
		"payload": issued.Payload,
		"png":     base64.StdEncoding.EncodeToString(issued.PNG),
	})
}

// GET /api/v1/consent/grants
func (h *ConsentHandler) ListGrants(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	gs, err := h.svc.ListGrantsForPatient(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newAccessGrantViews(gs))
}

// POST /api/v1/consent/grants/:id/approve
func (h *ConsentHandler) ApproveGrant(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	grantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid grant id")
	}

	var body struct {
		Signature string `json:"signature"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	g, err := h.svc.ApproveGrant(c.Context(), claims.UserID, grantID, body.Signature)
	if err != nil {
		return mapConsentError(c, err)
	}
	return ok(c, newAccessGrantView(*g))
}

// POST /api/v1/consent/grants/:id/deny
func (h *ConsentHandler) DenyGrant(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	grantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid grant id")
	}

	if err := h.svc.DenyGrant(c.Context(), claims.UserID, grantID); err != nil {
		return mapConsentError(c, err)
	}
	return noContent(c)
}

// POST /api/v1/consent/grants/:id/revoke
func (h *ConsentHandler) Revoke(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	grantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid grant id")
	}

	if err := h.svc.Revoke(c.Context(), claims.UserID, grantID); err != nil {
		return mapConsentError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapConsentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, consent.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, consent.ErrRequestNotFound), errors.Is(err, consent.ErrGrantNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, consent.ErrRequestExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, consent.ErrNotPending), errors.Is(err, consent.ErrNotActive):
		return conflict(c, err.Error())
	case errors.Is(err, consent.ErrSignatureRejected):
		return badRequest(c, err.Error())
	case errors.Is(err, consent.ErrAccessDenied):
		return forbidden(c, err.Error())
	case errors.Is(err, consent.ErrInvalidResource):
		return badRequest(c, err.Error())
	case errors.Is(err, consent.ErrNoRecords), errors.Is(err, consent.ErrRecordNotOwned):
		return badRequest(c, err.Error())
	case errors.Is(err, qr.ErrPayloadInvalid):
		return badRequest(c, err.Error())
	case errors.Is(err, qr.ErrPayloadExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	default:
		return internalError(c)
	}
}
