package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// UserSessionStore implements store.UserSessionStore using in-memory
// storage, reading the owner snapshot live from the user store.
type UserSessionStore struct {
	mu sync.RWMutex

	sessions map[string]*models.UserSession // token -> session
	users    *UserStore
}

// NewUserSessionStore creates a new in-memory user session store backed by
// the given user store for owner lookups.
func NewUserSessionStore(users *UserStore) *UserSessionStore {
	return &UserSessionStore{
		sessions: make(map[string]*models.UserSession),
		users:    users,
	}
}

// Create creates a new session in memory.
func (s *UserSessionStore) Create(ctx context.Context, session *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	s.sessions[session.Token] = &clone

	return nil
}

// GetActive retrieves a session by token with the owner snapshot populated.
func (s *UserSessionStore) GetActive(ctx context.Context, token string) (*models.UserSession, error) {
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

	user, err := s.users.Get(ctx, clone.UserID)
	if err != nil {
		return nil, store.ErrSessionNotFound
	}

	clone.Email = user.Email
	clone.DisplayName = user.DisplayName
	clone.OwnerActive = user.Active

	if !clone.OwnerActive {
		return nil, store.ErrOwnerDisabled
	}

	return &clone, nil
}

// Delete deletes a session by token (logout).
func (s *UserSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[token]; !exists {
		return store.ErrSessionNotFound
	}
	delete(s.sessions, token)

	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *UserSessionStore) DeleteExpired(ctx context.Context) (int, error) {
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
