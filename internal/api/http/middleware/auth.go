package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

// SessionChecker reports whether a login session is still live.
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// AuthRequired validates a Bearer PASETO access token and checks its session.
// On success the claims are stored in c.Locals(pasetotoken.CtxKeyClaims) and
// in the request context for services.
func AuthRequired(mgr *pasetotoken.Manager, sessions SessionChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		tok, ok := pasetotoken.BearerToken(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(tok)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// Only access tokens are accepted on protected routes
		if claims.Type != pasetotoken.TokenTypeAccess || claims.SessionID == nil {
			return fiber.ErrUnauthorized
		}

		active, err := sessions.SessionActive(c.Context(), *claims.SessionID)
		if err != nil {
			slog.ErrorContext(c.Context(), "session lookup failed", "error", err)
			return fiber.ErrServiceUnavailable
		}
		if !active {
			return fiber.ErrUnauthorized
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
