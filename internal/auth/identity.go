package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the per-request view of a resolved principal that downstream
// handlers branch on. It is created once per request by the gate and
// travels on the request context - never in process-wide state.
type Identity struct {
	// TenantID is the tenant-isolation boundary for the request. Nil for
	// platform admins and master-key holders, who are unscoped.
	TenantID *uuid.UUID

	// Role is set for tenant users only.
	Role string

	AdminID *uuid.UUID
	UserID  *uuid.UUID

	// Exactly one of these is true per successful resolution; API-key
	// callers are the case where all three are false but TenantID is set.
	IsPlatformAdmin bool
	IsTenantUser    bool
	IsMasterKey     bool
}

type contextKey int

const identityContextKey contextKey = iota

// NewIdentity projects a resolved principal onto the request-scoped view.
func NewIdentity(p *Principal) *Identity {
	id := &Identity{}

	switch p.Kind {
	case KindPlatformAdmin:
		adminID := p.AdminID
		id.AdminID = &adminID
		id.IsPlatformAdmin = true
	case KindTenantUser:
		userID := p.UserID
		tenantID := p.TenantID
		id.UserID = &userID
		id.TenantID = &tenantID
		id.Role = p.Role
		id.IsTenantUser = true
	case KindTenantAPIKey:
		tenantID := p.TenantID
		id.TenantID = &tenantID
	case KindMasterKey:
		id.IsMasterKey = true
	}

	return id
}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the identity from the request context.
// Returns nil if the request never passed the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}
