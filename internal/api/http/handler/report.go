package handler

import (
	"cmp"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/api/http/middleware"
	"github.com/sarahsindone/sbrp-application/internal/service/report"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
)

type ReportHandler struct {
	svc   report.Service
	authz authorize.IAuthorization
}

func NewReportHandler(svc report.Service, authz authorize.IAuthorization) *ReportHandler {
	return &ReportHandler{svc: svc, authz: authz}
}

func mapReportError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, report.ErrNotFound),
		errors.Is(err, report.ErrCaseNotFound),
		errors.Is(err, report.ErrClientNotFound),
		errors.Is(err, report.ErrDataCollectionNotFound),
		errors.Is(err, report.ErrTemplateNotFound),
		errors.Is(err, report.ErrNoDefaultTemplate):
		return notFound(c, err.Error())
	case errors.Is(err, report.ErrDataCollectionIncomplete):
		return preconditionFailed(c, err.Error())
	case errors.Is(err, report.ErrInvalidTransition),
		errors.Is(err, report.ErrReportPublished),
		errors.Is(err, report.ErrConcurrentUpdate),
		errors.Is(err, report.ErrReportNumberConflict):
		return conflict(c, err.Error())
	case errors.Is(err, report.ErrSectionOutOfRange),
		errors.Is(err, report.ErrSectionCountMismatch),
		errors.Is(err, report.ErrInvalidStatus):
		return badRequest(c, err.Error())
	case errors.Is(err, report.ErrCallerRequired):
		return unauthorized(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// POST /reports
func (h *ReportHandler) Generate(c fiber.Ctx) error {
	var body struct {
		CaseID     string `json:"case_id" validate:"required"`
		TemplateID string `json:"template_id"`
		Title      string `json:"title"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	r, err := h.svc.Generate(c.Context(), caller(c), report.GenerateRequest{
		CaseID:     body.CaseID,
		TemplateID: body.TemplateID,
		Title:      body.Title,
	})
	if err != nil {
		return mapReportError(c, err)
	}
	return created(c, r)
}

// GET /reports?case_id=&client_id=&status=
// caseId and clientId are accepted as aliases.
func (h *ReportHandler) List(c fiber.Ctx) error {
	var q struct {
		CaseID        string `query:"case_id"`
		CaseIDAlias   string `query:"caseId"`
		ClientID      string `query:"client_id"`
		ClientIDAlias string `query:"clientId"`
		Status        string `query:"status"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}

	list, err := h.svc.List(c.Context(), report.ListRequest{
		CaseID:   cmp.Or(q.CaseID, q.CaseIDAlias),
		ClientID: cmp.Or(q.ClientID, q.ClientIDAlias),
		Status:   q.Status,
	})
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, list)
}

// GET /reports/:id
func (h *ReportHandler) Get(c fiber.Ctx) error {
	r, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

type sectionPatchBody struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PUT /reports/:id
func (h *ReportHandler) Update(c fiber.Ctx) error {
	var body struct {
		Title    *string            `json:"title"`
		Sections []sectionPatchBody `json:"sections"`
		Status   *string            `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	req := report.UpdateRequest{Title: body.Title, Status: body.Status}
	if body.Sections != nil {
		req.Sections = make([]report.SectionPatch, len(body.Sections))
		for i, s := range body.Sections {
			req.Sections[i] = report.SectionPatch{Title: s.Title, Content: s.Content}
		}
	}

	r, err := h.svc.UpdateReport(c.Context(), caller(c), c.Params("id"), req)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// PATCH /reports/:id/sections/:index
func (h *ReportHandler) UpdateSection(c fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "section index must be an integer")
	}

	var body sectionPatchBody
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	r, err := h.svc.UpdateSection(c.Context(), caller(c), c.Params("id"), index, report.SectionPatch{
		Title:   body.Title,
		Content: body.Content,
	})
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// PATCH /reports/:id/review
func (h *ReportHandler) SubmitForReview(c fiber.Ctx) error {
	r, err := h.svc.SubmitForReview(c.Context(), caller(c), c.Params("id"))
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// PATCH /reports/:id/finalize
func (h *ReportHandler) Finalize(c fiber.Ctx) error {
	r, err := h.svc.Finalize(c.Context(), caller(c), c.Params("id"))
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// PATCH /reports/:id/publish
func (h *ReportHandler) Publish(c fiber.Ctx) error {
	var body struct {
		PdfURL *string `json:"pdf_url" validate:"omitempty,url"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return bindError(c, err)
		}
	}

	r, err := h.svc.Publish(c.Context(), caller(c), c.Params("id"), body.PdfURL)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// DELETE /reports/:id?force=true
// Forcing the delete of a published report needs report:override.
func (h *ReportHandler) Delete(c fiber.Ctx) error {
	force := fiber.Query[bool](c, "force")
	if force {
		if err := middleware.Permit(c, h.authz, authorize.ResourceReport, authorize.ActionOverride); err != nil {
			return err
		}
	}

	if err := h.svc.Delete(c.Context(), c.Params("id"), force); err != nil {
		return mapReportError(c, err)
	}
	return noContent(c)
}
