package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vetdesk/vetdesk/internal/store"
)

var (
	// ErrUnresolved is returned when a credential matches nothing in any
	// registry. It is externally indistinguishable from ErrPrincipalDisabled.
	ErrUnresolved = errors.New("credential unresolved")

	// ErrPrincipalDisabled is returned when a credential matches a record
	// whose principal has been deactivated. Kept distinct from
	// ErrUnresolved for server-side logging only.
	ErrPrincipalDisabled = errors.New("principal disabled")
)

// Resolver classifies a raw credential against the three registries, in a
// fixed precedence order: platform-admin session, tenant-user session,
// tenant API key, master key. Sessions are checked first because they are
// short-lived and dominate interactive traffic; the master key is checked
// last so every other scheme is ruled out before the constant-time path runs.
type Resolver struct {
	adminSessions store.AdminSessionStore
	userSessions  store.UserSessionStore
	tenants       store.TenantStore
	masterKey     []byte
}

// NewResolver creates a resolver over the given registries. masterKey may
// be empty, in which case the master-key scheme never matches.
func NewResolver(
	adminSessions store.AdminSessionStore,
	userSessions store.UserSessionStore,
	tenants store.TenantStore,
	masterKey string,
) *Resolver {
	return &Resolver{
		adminSessions: adminSessions,
		userSessions:  userSessions,
		tenants:       tenants,
		masterKey:     []byte(masterKey),
	}
}

// Resolve maps a credential to a principal. First match wins. Returns
// ErrUnresolved when nothing matches, ErrPrincipalDisabled when the
// credential belongs to a deactivated principal, and a wrapped registry
// error when a backing store fails - the latter must surface as a server
// error, never as an authentication failure.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*Principal, error) {
	// 1. Platform-admin session
	adminSession, err := r.adminSessions.GetActive(ctx, credential)
	switch {
	case err == nil:
		return NewPlatformAdminPrincipal(adminSession), nil
	case errors.Is(err, store.ErrOwnerDisabled):
		log.Debug().Msg("Admin session owner deactivated")
		return nil, ErrPrincipalDisabled
	case !isSessionMiss(err):
		return nil, fmt.Errorf("admin session registry: %w", err)
	}

	// 2. Tenant-user session
	userSession, err := r.userSessions.GetActive(ctx, credential)
	switch {
	case err == nil:
		return NewTenantUserPrincipal(userSession), nil
	case errors.Is(err, store.ErrOwnerDisabled):
		return nil, ErrPrincipalDisabled
	case !isSessionMiss(err):
		return nil, fmt.Errorf("user session registry: %w", err)
	}

	// 3. Tenant API key. An inactive tenant fails resolution outright; it
	// must not fall through to the master-key comparison.
	tenant, err := r.tenants.GetByAPIKey(ctx, credential)
	switch {
	case err == nil:
		if !tenant.IsActive() {
			log.Debug().Str("tenant_id", tenant.TenantID.String()).Msg("API key for inactive tenant")
			return nil, ErrPrincipalDisabled
		}
		return NewTenantAPIKeyPrincipal(tenant), nil
	case !errors.Is(err, store.ErrTenantNotFound):
		return nil, fmt.Errorf("tenant registry: %w", err)
	}

	// 4. Master key, constant-time compare so a near-miss takes as long as
	// a full match.
	if len(r.masterKey) > 0 &&
		subtle.ConstantTimeCompare([]byte(credential), r.masterKey) == 1 {
		return NewMasterKeyPrincipal(), nil
	}

	return nil, ErrUnresolved
}

// isSessionMiss reports whether a session lookup error means "no usable
// session" (as opposed to a registry failure).
func isSessionMiss(err error) bool {
	return errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired)
}
