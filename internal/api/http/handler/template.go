package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/service/template"
)

type TemplateHandler struct {
	svc template.Service
}

func NewTemplateHandler(svc template.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

func mapTemplateError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, template.ErrNotFound), errors.Is(err, template.ErrNoDefault):
		return notFound(c, err.Error())
	case errors.Is(err, template.ErrNameTaken):
		return conflict(c, err.Error())
	case errors.Is(err, template.ErrNameRequired), errors.Is(err, template.ErrSectionTitleRequired):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// POST /report-templates
func (h *TemplateHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name           string                   `json:"name"`
		Description    string                   `json:"description"`
		Sections       []repo.SectionDefinition `json:"sections"`
		HeaderTemplate string                   `json:"header_template"`
		FooterTemplate string                   `json:"footer_template"`
		IsDefault      bool                     `json:"is_default"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	t, err := h.svc.Create(c.Context(), template.CreateRequest{
		Name:           body.Name,
		Description:    body.Description,
		Sections:       body.Sections,
		HeaderTemplate: body.HeaderTemplate,
		FooterTemplate: body.FooterTemplate,
		IsDefault:      body.IsDefault,
		CreatedBy:      caller(c),
	})
	if err != nil {
		return mapTemplateError(c, err)
	}
	return created(c, t)
}

// GET /report-templates
func (h *TemplateHandler) List(c fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return mapTemplateError(c, err)
	}
	return ok(c, list)
}

// GET /report-templates/default
func (h *TemplateHandler) Default(c fiber.Ctx) error {
	t, err := h.svc.Default(c.Context())
	if err != nil {
		return mapTemplateError(c, err)
	}
	return ok(c, t)
}

// GET /report-templates/:id
func (h *TemplateHandler) Get(c fiber.Ctx) error {
	t, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapTemplateError(c, err)
	}
	return ok(c, t)
}

// PUT /report-templates/:id
func (h *TemplateHandler) Update(c fiber.Ctx) error {
	var body struct {
		Name           *string                  `json:"name"`
		Description    *string                  `json:"description"`
		Sections       []repo.SectionDefinition `json:"sections"`
		HeaderTemplate *string                  `json:"header_template"`
		FooterTemplate *string                  `json:"footer_template"`
		IsDefault      *bool                    `json:"is_default"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return bindError(c, err)
	}

	t, err := h.svc.Update(c.Context(), c.Params("id"), template.UpdateRequest{
		Name:           body.Name,
		Description:    body.Description,
		Sections:       body.Sections,
		HeaderTemplate: body.HeaderTemplate,
		FooterTemplate: body.FooterTemplate,
		IsDefault:      body.IsDefault,
	})
	if err != nil {
		return mapTemplateError(c, err)
	}
	return ok(c, t)
}

// DELETE /report-templates/:id
func (h *TemplateHandler) Delete(c fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapTemplateError(c, err)
	}
	return noContent(c)
}
