package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/internal/api/http/handler"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
)

func (r *Router) registerCaseFileRoutes(
	api fiber.Router,
	h *handler.CaseFileHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	clients := api.Group("/clients", authRequired)
	clients.Post("/", requirePerm(authorize.ResourceClient, authorize.ActionCreate), h.CreateClient)
	clients.Get("/:id", requirePerm(authorize.ResourceClient, authorize.ActionRead), h.GetClient)

	cases := api.Group("/cases", authRequired)
	cases.Post("/", requirePerm(authorize.ResourceCase, authorize.ActionCreate), h.CreateCase)
	cases.Get("/:id", requirePerm(authorize.ResourceCase, authorize.ActionRead), h.GetCase)

	dc := api.Group("/data-collections", authRequired)
	dc.Post("/", requirePerm(authorize.ResourceDataCollection, authorize.ActionCreate), h.CreateDataCollection)
	dc.Get("/case/:caseId", requirePerm(authorize.ResourceDataCollection, authorize.ActionRead), h.GetDataCollectionByCase)
	dc.Patch("/:id/sections/:section", requirePerm(authorize.ResourceDataCollection, authorize.ActionUpdate), h.MarkSectionComplete)
	dc.Patch("/:id/complete", requirePerm(authorize.ResourceDataCollection, authorize.ActionUpdate), h.CompleteDataCollection)
}
