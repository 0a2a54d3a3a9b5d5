package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuditedAuthorization logs every decision and policy change of the wrapped
// IAuthorization and counts decisions by outcome.
type AuditedAuthorization struct {
	inner     IAuthorization
	logger    *slog.Logger
	decisions metric.Int64Counter
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	decisions, err := otel.Meter("sbrp/authorize").Int64Counter(
		"authz_decisions_total",
		metric.WithDescription("Authorization decisions by resource, action and outcome"),
	)
	if err != nil {
		logger.Warn("authz decision counter unavailable", "error", err)
	}
	return &AuditedAuthorization{inner: inner, logger: logger, decisions: decisions}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	attrs := []any{
		"subject", string(subject),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}

	outcome := "deny"
	switch {
	case err != nil:
		outcome = "error"
		a.logger.ErrorContext(ctx, "authz_decision", append(attrs, "error", err.Error())...)
	case allowed:
		outcome = "allow"
		a.logger.InfoContext(ctx, "authz_decision", attrs...)
	default:
		a.logger.WarnContext(ctx, "authz_decision", attrs...)
	}

	if a.decisions != nil {
		a.decisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("resource", string(object)),
			attribute.String("action", string(action)),
			attribute.String("outcome", outcome),
		))
	}
	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	return mustEnforce(ctx, a, subject, domain, object, action)
}

func (a *AuditedAuthorization) AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	added, err := a.inner.AddRoleForUserInDomain(ctx, subject, role, domain)
	a.logChange(ctx, "authz_role_change", err,
		"operation", "add_role",
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"changed", added,
	)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	removed, err := a.inner.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	a.logChange(ctx, "authz_role_change", err,
		"operation", "remove_role",
		"subject", string(subject),
		"role", string(role),
		"domain", string(domain),
		"changed", removed,
	)
	return removed, err
}

func (a *AuditedAuthorization) GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.GetRolesForUserInDomain(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, domain, object, action, effect)
	a.logChange(ctx, "authz_permission_change", err, permissionAttrs("add_permission", role, domain, object, action, effect, added)...)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, domain, object, action, effect)
	a.logChange(ctx, "authz_permission_change", err, permissionAttrs("remove_permission", role, domain, object, action, effect, removed)...)
	return removed, err
}

func (a *AuditedAuthorization) Raw() *casbin.DistributedEnforcer {
	return a.inner.Raw()
}

func (a *AuditedAuthorization) logChange(ctx context.Context, msg string, err error, attrs ...any) {
	if err != nil {
		a.logger.ErrorContext(ctx, msg, append(attrs, "error", err.Error())...)
		return
	}
	a.logger.InfoContext(ctx, msg, attrs...)
}

func permissionAttrs(op string, role Role, domain Domain, object Resource, action Action, effect PolicyEffect, changed bool) []any {
	return []any{
		"operation", op,
		"role", string(role),
		"domain", string(domain),
		"resource", string(object),
		"action", string(action),
		"effect", string(effect),
		"changed", changed,
	}
}
