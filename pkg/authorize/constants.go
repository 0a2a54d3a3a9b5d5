package authorize

import (
	"fmt"
	"regexp"
	"strings"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// Report lifecycle
	ActionApprove Action = "approve" // review -> final
	ActionPublish Action = "publish" // final -> published

	// Override lets a principal bypass lifecycle guards, e.g. deleting a
	// published report.
	ActionOverride Action = "override"

	// RBAC-specific actions
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {},
	ActionApprove: {}, ActionPublish: {}, ActionOverride: {},
	ActionGrant: {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity / auth
	ResourceUser        Resource = "user"
	ResourceAuthSession Resource = "auth_session"

	// Reports
	ResourceReport         Resource = "report"
	ResourceReportTemplate Resource = "report_template"

	// Case file
	ResourceClient         Resource = "client"
	ResourceCase           Resource = "case"
	ResourceDataCollection Resource = "data_collection"

	// System / platform admin
	ResourceSystem Resource = "system"
	ResourceAudit  Resource = "audit"
	ResourceRBAC   Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceAuthSession: {},
	ResourceReport: {}, ResourceReportTemplate: {},
	ResourceClient: {}, ResourceCase: {}, ResourceDataCollection: {},
	ResourceSystem: {}, ResourceAudit: {}, ResourceRBAC: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// These are the policy subjects assigned to users via grouping policies.

const (
	WildcardRole Role = "*"

	// Platform roles (domain = sys)
	RoleAdmin        Role = "role:sys:admin"
	RolePractitioner Role = "role:sys:practitioner"

	// Private user scope (domain = user:<uuid>)
	RoleUserSelf Role = "role:user:self"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:        {},
	RolePractitioner: {},
	RoleUserSelf:     {},
}

// Application roles as stored on the user record.
const (
	AppRoleAdmin        = "admin"
	AppRolePractitioner = "practitioner"
)

var appRoles = map[string]Role{
	AppRoleAdmin:        RoleAdmin,
	AppRolePractitioner: RolePractitioner,
}

// RoleFor maps a user's application role to its Casbin role.
func RoleFor(appRole string) (Role, bool) {
	r, ok := appRoles[strings.ToLower(strings.TrimSpace(appRole))]
	return r, ok
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys Domain = "sys"
)

const (
	DomainPrefixUser Domain = "user:"
)

const (
	WildcardDomain Domain = "*"
)

var (
	reUUID = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)
)

func UserDomain(userID string) Domain {
	return Domain(fmt.Sprintf("%s%s", DomainPrefixUser, userID))
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}

	rest, ok := strings.CutPrefix(string(d), string(DomainPrefixUser))
	return ok && reUUID.MatchString(rest)
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete principal id.
type GroupSubject string

// Grouping rows: g, user_id, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

// DefaultModel is the RBAC-with-domains model the enforcer runs when no
// model file is configured.
const DefaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (g(r.sub, p.sub, r.dom) || g2(r.sub, p.sub)) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || keyMatch(r.act, p.act))
`
