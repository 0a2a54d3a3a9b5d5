package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/service/artifact"
)

type ArtifactHandler struct {
	svc artifact.Service
}

func NewArtifactHandler(svc artifact.Service) *ArtifactHandler {
	return &ArtifactHandler{svc: svc}
}

func mapArtifactError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, artifact.ErrReportNotFound), errors.Is(err, artifact.ErrNoArtifact):
		return notFound(c, err.Error())
	case errors.Is(err, artifact.ErrNotPDF), errors.Is(err, artifact.ErrEmpty):
		return badRequest(c, err.Error())
	case errors.Is(err, artifact.ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, artifact.ErrStorageOff):
		return serviceUnavailable(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// POST /reports/:id/artifact  (multipart, field "file")
func (h *ArtifactHandler) Upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return internalError(c, err)
	}
	defer f.Close()

	a, err := h.svc.Upload(c.Context(), artifact.UploadRequest{
		ReportID:    c.Params("id"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return mapArtifactError(c, err)
	}
	return created(c, a)
}

// GET /reports/:id/artifact
// Redirects to the document; ?format=json returns the link instead.
func (h *ArtifactHandler) Download(c fiber.Ctx) error {
	u, err := h.svc.DownloadURL(c.Context(), c.Params("id"))
	if err != nil {
		return mapArtifactError(c, err)
	}
	if c.Query("format") == "json" {
		return ok(c, fiber.Map{"url": u})
	}
	return c.Redirect().Status(fiber.StatusFound).To(u)
}
