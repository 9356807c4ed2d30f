package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminSession is a platform-admin login session. The token is the only
// value the client holds; everything else lives server-side.
type AdminSession struct {
	Token   string // opaque, "vds_" prefixed
	AdminID uuid.UUID

	CreatedAt time.Time
	ExpiresAt time.Time

	// Audit metadata captured at login
	IPAddress string
	UserAgent string

	// Owner snapshot, populated on read. A session whose owner has been
	// deactivated is invalid even before it expires.
	Email       string
	DisplayName string
	OwnerActive bool
}

// IsExpired returns true if the session has passed its expiry.
func (s *AdminSession) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// UserSession is a tenant-employee login session. Tenant ID and role are
// denormalized onto the session so resolution needs a single lookup.
type UserSession struct {
	Token    string
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string

	CreatedAt time.Time
	ExpiresAt time.Time

	IPAddress string
	UserAgent string

	Email       string
	DisplayName string
	OwnerActive bool
}

// IsExpired returns true if the session has passed its expiry.
func (s *UserSession) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}
