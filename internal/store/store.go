package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vetdesk/vetdesk/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrOwnerDisabled       = errors.New("session owner disabled")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("tenant already exists")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrAdminAlreadyExists  = errors.New("admin already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
)

// AdminSessionStore manages platform-admin login sessions.
type AdminSessionStore interface {
	Create(ctx context.Context, session *models.AdminSession) error

	// GetActive retrieves a session by token with the owner snapshot
	// populated. It returns ErrSessionNotFound for unknown tokens,
	// ErrSessionExpired for expired ones, and ErrOwnerDisabled when the
	// owning admin has been deactivated.
	GetActive(ctx context.Context, token string) (*models.AdminSession, error)

	// Delete removes a session (logout).
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions and returns the count.
	DeleteExpired(ctx context.Context) (int, error)
}

// UserSessionStore manages tenant-employee login sessions.
type UserSessionStore interface {
	Create(ctx context.Context, session *models.UserSession) error
	GetActive(ctx context.Context, token string) (*models.UserSession, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// TenantStore manages tenant accounts and their API keys.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)

	// GetByAPIKey retrieves a tenant by exact API-key match regardless of
	// status. Callers decide how an inactive tenant is surfaced; the store
	// only distinguishes found from ErrTenantNotFound.
	GetByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error)

	// UpdateAPIKey replaces the tenant's API key (rotation).
	UpdateAPIKey(ctx context.Context, tenantID uuid.UUID, apiKey string) error

	// SetStatus activates or deactivates a tenant.
	SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus) error
}

// AdminStore manages platform-admin accounts.
type AdminStore interface {
	Create(ctx context.Context, admin *models.PlatformAdmin) error
	Get(ctx context.Context, adminID uuid.UUID) (*models.PlatformAdmin, error)
	GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error)
	SetActive(ctx context.Context, adminID uuid.UUID, active bool) error
}

// UserStore manages tenant-employee accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.TenantUser) error
	Get(ctx context.Context, userID uuid.UUID) (*models.TenantUser, error)
	GetByEmail(ctx context.Context, email string) (*models.TenantUser, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
}
