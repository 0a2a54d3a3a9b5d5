package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
)

// RequirePermission checks that the authenticated user may perform action on
// resource in the sys domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := Permit(c, auth, resource, action); err != nil {
			return err
		}
		return c.Next()
	}
}

// Permit is the inline form of RequirePermission for handlers whose required
// permission depends on the request, e.g. forced deletes.
func Permit(c fiber.Ctx, auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) error {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	subject := authorize.GroupSubject(claims.UserID.String())
	err := auth.MustEnforce(c.Context(), subject, authorize.DomainSys, resource, action)
	if errors.Is(err, authorize.ErrForbidden) {
		return fiber.ErrForbidden
	}
	return err
}
