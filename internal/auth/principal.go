package auth

import (
	"github.com/google/uuid"
	"github.com/vetdesk/vetdesk/internal/models"
)

// Kind discriminates the principal variants. Exactly one kind is set per
// resolved principal; "unresolved" is an error, never a zero Principal.
type Kind int

const (
	KindPlatformAdmin Kind = iota + 1
	KindTenantUser
	KindTenantAPIKey
	KindMasterKey
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindPlatformAdmin:
		return "platform_admin"
	case KindTenantUser:
		return "tenant_user"
	case KindTenantAPIKey:
		return "tenant_api_key"
	case KindMasterKey:
		return "master_key"
	default:
		return "unknown"
	}
}

// Principal is the resolved identity behind a credential. Only the fields
// belonging to the active Kind are populated; use the constructors below.
type Principal struct {
	Kind Kind

	// Platform admin
	AdminID uuid.UUID

	// Tenant user
	UserID uuid.UUID
	Role   string

	// Tenant user and tenant API key
	TenantID uuid.UUID

	// Shared display fields (admin and user variants)
	Email       string
	DisplayName string

	// Tenant API key snapshot
	TenantName string
}

// NewPlatformAdminPrincipal builds a principal from an admin session.
func NewPlatformAdminPrincipal(session *models.AdminSession) *Principal {
	return &Principal{
		Kind:        KindPlatformAdmin,
		AdminID:     session.AdminID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
	}
}

// NewTenantUserPrincipal builds a principal from a tenant-user session. A
// session without a role resolves to the lowest-privilege role.
func NewTenantUserPrincipal(session *models.UserSession) *Principal {
	role := session.Role
	if role == "" {
		role = models.RoleAssistant
	}

	return &Principal{
		Kind:        KindTenantUser,
		UserID:      session.UserID,
		TenantID:    session.TenantID,
		Role:        role,
		Email:       session.Email,
		DisplayName: session.DisplayName,
	}
}

// NewTenantAPIKeyPrincipal builds a principal from an active tenant record.
func NewTenantAPIKeyPrincipal(tenant *models.Tenant) *Principal {
	return &Principal{
		Kind:       KindTenantAPIKey,
		TenantID:   tenant.TenantID,
		TenantName: tenant.Name,
	}
}

// NewMasterKeyPrincipal builds the master-key principal. It carries no
// tenant ID and bypasses tenant scoping entirely.
func NewMasterKeyPrincipal() *Principal {
	return &Principal{
		Kind: KindMasterKey,
	}
}

// Tenant returns the tenant scope of the principal, if it has one.
// Platform admins and master-key holders are unscoped.
func (p *Principal) Tenant() (uuid.UUID, bool) {
	switch p.Kind {
	case KindTenantUser, KindTenantAPIKey:
		return p.TenantID, true
	default:
		return uuid.Nil, false
	}
}
