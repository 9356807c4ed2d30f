package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformAdmin is a super-administrator of the platform itself.
// Admins are not scoped to any tenant.
type PlatformAdmin struct {
	AdminID      uuid.UUID // UUIDv7
	Email        string
	DisplayName  string
	PasswordHash string // argon2id encoded hash, never the password
	Active       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
