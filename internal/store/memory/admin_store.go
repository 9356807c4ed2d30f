package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// AdminStore implements store.AdminStore using in-memory storage.
type AdminStore struct {
	mu sync.RWMutex

	admins  map[uuid.UUID]*models.PlatformAdmin
	byEmail map[string]uuid.UUID // lowercased email -> admin_id
}

// NewAdminStore creates a new in-memory platform-admin store.
func NewAdminStore() *AdminStore {
	return &AdminStore{
		admins:  make(map[uuid.UUID]*models.PlatformAdmin),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create creates a new platform admin in memory.
func (s *AdminStore) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.admins[admin.AdminID]; exists {
		return store.ErrAdminAlreadyExists
	}
	email := strings.ToLower(admin.Email)
	if _, exists := s.byEmail[email]; exists {
		return store.ErrAdminAlreadyExists
	}

	clone := *admin
	s.admins[admin.AdminID] = &clone
	s.byEmail[email] = admin.AdminID

	return nil
}

// Get retrieves an admin by ID.
func (s *AdminStore) Get(ctx context.Context, adminID uuid.UUID) (*models.PlatformAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, exists := s.admins[adminID]
	if !exists {
		return nil, store.ErrAdminNotFound
	}

	clone := *admin
	return &clone, nil
}

// GetByEmail retrieves an admin by email (case-insensitive).
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adminID, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, store.ErrAdminNotFound
	}

	clone := *s.admins[adminID]
	return &clone, nil
}

// SetActive activates or deactivates an admin account.
func (s *AdminStore) SetActive(ctx context.Context, adminID uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, exists := s.admins[adminID]
	if !exists {
		return store.ErrAdminNotFound
	}

	admin.Active = active
	admin.UpdatedAt = time.Now()

	return nil
}
