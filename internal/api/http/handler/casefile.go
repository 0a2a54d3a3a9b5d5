package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/service/casefile"
)

// CaseFileHandler serves clients, cases and data collection records.
type CaseFileHandler struct {
	svc casefile.Service
}

func NewCaseFileHandler(svc casefile.Service) *CaseFileHandler {
	return &CaseFileHandler{svc: svc}
}

func mapCaseFileError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, casefile.ErrClientNotFound),
		errors.Is(err, casefile.ErrCaseNotFound),
		errors.Is(err, casefile.ErrDataCollectionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, casefile.ErrCaseNumberTaken),
		errors.Is(err, casefile.ErrDataCollectionExists):
		return conflict(c, err.Error())
	case errors.Is(err, casefile.ErrSectionsIncomplete):
		return preconditionFailed(c, err.Error())
	case errors.Is(err, casefile.ErrCompanyNameRequired),
		errors.Is(err, casefile.ErrInvalidACN),
		errors.Is(err, casefile.ErrInvalidABN),
		errors.Is(err, casefile.ErrCaseNumberRequired),
		errors.Is(err, casefile.ErrInvalidCaseStatus),
		errors.Is(err, casefile.ErrUnknownSection):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

// POST /clients
func (h *CaseFileHandler) CreateClient(c fiber.Ctx) error {
	var body struct {
		CompanyName          string `json:"company_name" validate:"required"`
		TradingName          string `json:"trading_name"`
		ACN                  string `json:"acn"`
		ABN                  string `json:"abn"`
		BusinessType         string `json:"business_type"`
		AssignedPractitioner string `json:"assigned_practitioner"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	cl, err := h.svc.CreateClient(c.Context(), casefile.CreateClientRequest{
		CompanyName:          body.CompanyName,
		TradingName:          body.TradingName,
		ACN:                  body.ACN,
		ABN:                  body.ABN,
		BusinessType:         body.BusinessType,
		AssignedPractitioner: body.AssignedPractitioner,
		CreatedBy:            caller(c),
	})
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return created(c, cl)
}

// GET /clients/:id
func (h *CaseFileHandler) GetClient(c fiber.Ctx) error {
	cl, err := h.svc.GetClient(c.Context(), c.Params("id"))
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return ok(c, cl)
}

// ---------------------------------------------------------------------------
// Cases
// ---------------------------------------------------------------------------

// POST /cases
func (h *CaseFileHandler) CreateCase(c fiber.Ctx) error {
	var body struct {
		CaseNumber      string       `json:"case_number" validate:"required"`
		ClientID        string       `json:"client_id" validate:"required"`
		CaseType        string       `json:"case_type"`
		AppointmentDate *time.Time   `json:"appointment_date"`
		Status          string       `json:"status"`
		PrimaryContact  repo.Contact `json:"primary_contact"`
		Notes           string       `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	cs, err := h.svc.CreateCase(c.Context(), casefile.CreateCaseRequest{
		CaseNumber:      body.CaseNumber,
		ClientID:        body.ClientID,
		CaseType:        body.CaseType,
		AppointmentDate: body.AppointmentDate,
		Status:          body.Status,
		PrimaryContact:  body.PrimaryContact,
		Notes:           body.Notes,
		CreatedBy:       caller(c),
	})
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return created(c, cs)
}

// GET /cases/:id
func (h *CaseFileHandler) GetCase(c fiber.Ctx) error {
	cs, err := h.svc.GetCase(c.Context(), c.Params("id"))
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return ok(c, cs)
}

// ---------------------------------------------------------------------------
// Data collection
// ---------------------------------------------------------------------------

// POST /data-collections
func (h *CaseFileHandler) CreateDataCollection(c fiber.Ctx) error {
	var body struct {
		CaseID string `json:"case_id" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	dc, err := h.svc.CreateDataCollection(c.Context(), caller(c), body.CaseID)
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return created(c, dc)
}

// GET /data-collections/case/:caseId
func (h *CaseFileHandler) GetDataCollectionByCase(c fiber.Ctx) error {
	dc, err := h.svc.GetDataCollectionByCase(c.Context(), c.Params("caseId"))
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return ok(c, dc)
}

// PATCH /data-collections/:id/sections/:section
func (h *CaseFileHandler) MarkSectionComplete(c fiber.Ctx) error {
	dc, err := h.svc.MarkSectionComplete(c.Context(), caller(c), c.Params("id"), c.Params("section"))
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return ok(c, dc)
}

// PATCH /data-collections/:id/complete
func (h *CaseFileHandler) CompleteDataCollection(c fiber.Ctx) error {
	dc, err := h.svc.CompleteDataCollection(c.Context(), caller(c), c.Params("id"))
	if err != nil {
		return mapCaseFileError(c, err)
	}
	return ok(c, dc)
}
