package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/service/record"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

type RecordHandler struct {
	svc record.Service
}

func NewRecordHandler(svc record.Service) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// POST /api/v1/records  (multipart/form-data, file field optional)
func (h *RecordHandler) Create(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	in := record.CreateInput{
		UserID:      claims.UserID,
		RecordType:  model.RecordType(c.FormValue("record_type")),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if in.Title == "" {
		return badRequest(c, "title is required")
	}
	if hid := c.FormValue("hospital_id"); hid != "" {
		id, err := uuid.Parse(hid)
		if err != nil {
			return badRequest(c, "hospital_id is not a valid id")
		}
		in.HospitalID = &id
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "attachment could not be read")
		}
		defer f.Close()

		in.Attachment = f
		in.FileName = fh.Filename
		in.ContentType = fh.Header.Get("Content-Type")
		in.Size = fh.Size
	}

	rec, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return mapRecordError(c, err)
	}
	return created(c, newRecordView(*rec))
}

// GET /api/v1/records
func (h *RecordHandler) List(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	recs, err := h.svc.List(c.Context(), claims.UserID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, newRecordViews(recs))
}

// GET /api/v1/records/:id
func (h *RecordHandler) Get(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid record id")
	}

	rec, err := h.svc.Get(c.Context(), claims.UserID, recordID)
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, newRecordView(*rec))
}

// GET /api/v1/records/:id/attachment
func (h *RecordHandler) Attachment(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid record id")
	}

	url, err := h.svc.AttachmentURL(c.Context(), claims.UserID, recordID)
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, fiber.Map{"url": url})
}

// DELETE /api/v1/records/:id
func (h *RecordHandler) Delete(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid record id")
	}

	if err := h.svc.Delete(c.Context(), claims.UserID, recordID); err != nil {
		return mapRecordError(c, err)
	}
	return noContent(c)
}

func mapRecordError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, record.ErrRecordNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, record.ErrInvalidType):
		return badRequest(c, err.Error())
	case errors.Is(err, record.ErrNoAttachment):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}
