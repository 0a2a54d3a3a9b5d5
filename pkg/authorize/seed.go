package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPolicies is the baseline permission set seeded by `system migrate`.
func DefaultPolicies() []PermissionPolicy {
	allow := func(role Role, obj Resource, act Action) PermissionPolicy {
		return PermissionPolicy{role, DomainSys, obj, act, EffectAllow}
	}

	return []PermissionPolicy{
		// Admin: everything, including force-deleting published reports.
		allow(RoleAdmin, WildcardResource, WildcardAction),

		// Practitioner: works cases through to a published report.
		allow(RolePractitioner, ResourceReport, ActionCreate),
		allow(RolePractitioner, ResourceReport, ActionRead),
		allow(RolePractitioner, ResourceReport, ActionUpdate),
		allow(RolePractitioner, ResourceReport, ActionApprove),
		allow(RolePractitioner, ResourceReport, ActionPublish),
		allow(RolePractitioner, ResourceReport, ActionDelete),
		allow(RolePractitioner, ResourceReportTemplate, ActionRead),
		allow(RolePractitioner, ResourceClient, ActionCreate),
		allow(RolePractitioner, ResourceClient, ActionRead),
		allow(RolePractitioner, ResourceCase, ActionCreate),
		allow(RolePractitioner, ResourceCase, ActionRead),
		allow(RolePractitioner, ResourceDataCollection, ActionCreate),
		allow(RolePractitioner, ResourceDataCollection, ActionRead),
		allow(RolePractitioner, ResourceDataCollection, ActionUpdate),

		// UserSelf: own profile and sessions (domain user:<uuid>).
		{RoleUserSelf, WildcardDomain, ResourceUser, ActionRead, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceAuthSession, ActionRead, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceAuthSession, ActionDelete, EffectAllow},
	}
}

// SeedDefaultPolicies adds DefaultPolicies. Existing rows are left alone.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			slog.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			slog.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	slog.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// AssignUserSelfRole assigns the user:self role in the user's private domain.
// Call this when creating a new user.
func AssignUserSelfRole(ctx context.Context, auth IAuthorization, userID string) error {
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), RoleUserSelf, UserDomain(userID))
	return err
}

// AssignAppRole grants the Casbin role matching the user's application role
// in the sys domain.
func AssignAppRole(ctx context.Context, auth IAuthorization, userID, appRole string) error {
	role, ok := RoleFor(appRole)
	if !ok {
		return fmt.Errorf("%w: unknown application role %q", ErrInvalidArgs, appRole)
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainSys)
	return err
}

// RemoveSystemRole removes a system-level role from a user.
func RemoveSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainSys)
	return err
}
