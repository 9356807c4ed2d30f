package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a tenant account.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant represents an isolated customer organization (a clinic).
// Every business record in the system is scoped by tenant ID; the API key
// is the tenant's long-lived machine credential.
type Tenant struct {
	TenantID uuid.UUID // UUIDv7
	Name     string
	APIKey   string // opaque, "vdk_" prefixed
	Status   TenantStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the tenant may authenticate.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
