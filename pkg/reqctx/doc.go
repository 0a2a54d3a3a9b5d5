// Package reqctx holds request-scoped values shared between the HTTP layer,
// services and logging.
//
// Middleware stores values once per request:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithClaims(ctx, claims)
//
// and downstream code reads them back:
//
//	rid := reqctx.RequestIDFromContext(ctx)
//	caller := reqctx.CallerFromContext(ctx)
//
// RequestMeta is set for every HTTP request. Claims are set only after the
// access token and its session have been verified.
package reqctx
