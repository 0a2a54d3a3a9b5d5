package authorize

import "github.com/sarahsindone/sbrp-application/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the path to the Casbin model file. Empty uses DefaultModel.
	CasbinModelPath string

	// PolicyPath selects a CSV file adapter instead of Postgres.
	PolicyPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// AdminBypass lets RoleAdmin in the sys domain skip policy evaluation.
	AdminBypass bool

	// HealthCheckEnabled makes readiness depend on policy reload health.
	HealthCheckEnabled bool
}

// DefaultConfig returns sensible defaults for authorization configuration
func DefaultConfig() Config {
	return Config{
		EnableAudit:        true,
		AdminBypass:        true,
		HealthCheckEnabled: true,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath:    c.CasbinModelPath,
		PolicyPath:         c.PolicyPath,
		EnableAudit:        c.EnableAudit,
		AdminBypass:        c.AdminBypass,
		HealthCheckEnabled: c.HealthCheckEnabled,
	}
}
