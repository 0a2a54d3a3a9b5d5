package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/api/http/handler"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
)

func (r *Router) registerReportRoutes(
	api fiber.Router,
	h *handler.ReportHandler,
	ah *handler.ArtifactHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	reports := api.Group("/reports", authRequired)

	reports.Post("/", requirePerm(authorize.ResourceReport, authorize.ActionCreate), h.Generate)
	reports.Get("/", requirePerm(authorize.ResourceReport, authorize.ActionRead), h.List)

	rp := reports.Group("/:id")
	rp.Get("/", requirePerm(authorize.ResourceReport, authorize.ActionRead), h.Get)
	rp.Put("/", requirePerm(authorize.ResourceReport, authorize.ActionUpdate), h.Update)
	rp.Delete("/", requirePerm(authorize.ResourceReport, authorize.ActionDelete), h.Delete)

	// Lifecycle
	rp.Patch("/sections/:index", requirePerm(authorize.ResourceReport, authorize.ActionUpdate), h.UpdateSection)
	rp.Patch("/review", requirePerm(authorize.ResourceReport, authorize.ActionUpdate), h.SubmitForReview)
	rp.Patch("/finalize", requirePerm(authorize.ResourceReport, authorize.ActionApprove), h.Finalize)
	rp.Patch("/publish", requirePerm(authorize.ResourceReport, authorize.ActionPublish), h.Publish)

	// Artifact
	rp.Post("/artifact", requirePerm(authorize.ResourceReport, authorize.ActionUpdate), ah.Upload)
	rp.Get("/artifact", requirePerm(authorize.ResourceReport, authorize.ActionRead), ah.Download)
}
