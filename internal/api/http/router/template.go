package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/api/http/handler"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
)

func (r *Router) registerTemplateRoutes(
	api fiber.Router,
	h *handler.TemplateHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	g := api.Group("/report-templates", authRequired)

	g.Post("/", requirePerm(authorize.ResourceReportTemplate, authorize.ActionCreate), h.Create)
	g.Get("/", requirePerm(authorize.ResourceReportTemplate, authorize.ActionRead), h.List)
	g.Get("/default", requirePerm(authorize.ResourceReportTemplate, authorize.ActionRead), h.Default)
	g.Get("/:id", requirePerm(authorize.ResourceReportTemplate, authorize.ActionRead), h.Get)
	g.Put("/:id", requirePerm(authorize.ResourceReportTemplate, authorize.ActionUpdate), h.Update)
	g.Delete("/:id", requirePerm(authorize.ResourceReportTemplate, authorize.ActionDelete), h.Delete)
}
