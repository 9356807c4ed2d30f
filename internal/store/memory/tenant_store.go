package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// TenantStore implements store.TenantStore using in-memory storage.
// This implementation is for testing and dev mode - data is lost on restart.
type TenantStore struct {
	mu sync.RWMutex

	tenants  map[uuid.UUID]*models.Tenant // tenant_id -> Tenant
	byAPIKey map[string]uuid.UUID         // api_key -> tenant_id
}

// NewTenantStore creates a new in-memory tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{
		tenants:  make(map[uuid.UUID]*models.Tenant),
		byAPIKey: make(map[string]uuid.UUID),
	}
}

// Create creates a new tenant in memory.
func (s *TenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[tenant.TenantID]; exists {
		return store.ErrTenantAlreadyExists
	}
	if _, exists := s.byAPIKey[tenant.APIKey]; exists {
		return store.ErrTenantAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *tenant
	s.tenants[tenant.TenantID] = &clone
	s.byAPIKey[tenant.APIKey] = tenant.TenantID

	return nil
}

// Get retrieves a tenant by ID.
func (s *TenantStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, exists := s.tenants[tenantID]
	if !exists {
		return nil, store.ErrTenantNotFound
	}

	clone := *tenant
	return &clone, nil
}

// GetByAPIKey retrieves a tenant by exact API-key match, regardless of status.
func (s *TenantStore) GetByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID, exists := s.byAPIKey[apiKey]
	if !exists {
		return nil, store.ErrTenantNotFound
	}

	clone := *s.tenants[tenantID]
	return &clone, nil
}

// UpdateAPIKey replaces the tenant's API key.
func (s *TenantStore) UpdateAPIKey(ctx context.Context, tenantID uuid.UUID, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, exists := s.tenants[tenantID]
	if !exists {
		return store.ErrTenantNotFound
	}

	delete(s.byAPIKey, tenant.APIKey)
	tenant.APIKey = apiKey
	tenant.UpdatedAt = time.Now()
	s.byAPIKey[apiKey] = tenantID

	return nil
}

// SetStatus activates or deactivates a tenant.
func (s *TenantStore) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, exists := s.tenants[tenantID]
	if !exists {
		return store.ErrTenantNotFound
	}

	tenant.Status = status
	tenant.UpdatedAt = time.Now()

	return nil
}
