package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// AdminSessionStore implements store.AdminSessionStore using in-memory
// storage. The owner snapshot is read live from the admin store at lookup
// time, mirroring the join the postgres implementation performs.
type AdminSessionStore struct {
	mu sync.RWMutex

	sessions map[string]*models.AdminSession // token -> session
	admins   *AdminStore
}

// NewAdminSessionStore creates a new in-memory admin session store backed
// by the given admin store for owner lookups.
func NewAdminSessionStore(admins *AdminStore) *AdminSessionStore {
	return &AdminSessionStore{
		sessions: make(map[string]*models.AdminSession),
		admins:   admins,
	}
}

// Create creates a new session in memory.
func (s *AdminSessionStore) Create(ctx context.Context, session *models.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	s.sessions[session.Token] = &clone

	return nil
}

// GetActive retrieves a session by token with the owner snapshot populated.
func (s *AdminSessionStore) GetActive(ctx context.Context, token string) (*models.AdminSession, error) {
	s.mu.RLock()
	session, exists := s.sessions[token]
	if !exists {
		s.mu.RUnlock()
		return nil, store.ErrSessionNotFound
	}
	clone := *session
	s.mu.RUnlock()

	if clone.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	admin, err := s.admins.Get(ctx, clone.AdminID)
	if err != nil {
		return nil, store.ErrSessionNotFound
	}

	clone.Email = admin.Email
	clone.DisplayName = admin.DisplayName
	clone.OwnerActive = admin.Active

	if !clone.OwnerActive {
		return nil, store.ErrOwnerDisabled
	}

	return &clone, nil
}

// Delete deletes a session by token (logout).
func (s *AdminSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[token]; !exists {
		return store.ErrSessionNotFound
	}
	delete(s.sessions, token)

	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *AdminSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, token)
			count++
		}
	}

	return count, nil
}
