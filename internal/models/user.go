package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleAssistant is the lowest-privilege tenant role. Sessions that carry no
// role resolve to this.
const RoleAssistant = "assistant"

// TenantUser is an employee of a tenant (vet, receptionist, practice
// manager). Users authenticate with email+password and act within a single
// tenant.
type TenantUser struct {
	UserID       uuid.UUID // UUIDv7
	TenantID     uuid.UUID
	Email        string
	DisplayName  string
	Role         string // "owner", "vet", "editor", "assistant", ...
	PasswordHash string
	Active       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
