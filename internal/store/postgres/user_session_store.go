package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// UserSessionStore implements store.UserSessionStore using PostgreSQL.
type UserSessionStore struct {
	pool *pgxpool.Pool
}

// NewUserSessionStore creates a new PostgreSQL-backed user session store.
func NewUserSessionStore(pool *pgxpool.Pool) *UserSessionStore {
	return &UserSessionStore{
		pool: pool,
	}
}

// Create creates a new session in the database.
func (s *UserSessionStore) Create(ctx context.Context, session *models.UserSession) error {
	query := `
		INSERT INTO user_sessions (
			token, user_id, tenant_id, role, created_at, expires_at, ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7::inet, $8
		)
	`

	var ipAddress any
	if session.IPAddress != "" {
		ipAddress = session.IPAddress
	}

	_, err := s.pool.Exec(ctx, query,
		session.Token,
		session.UserID,
		session.TenantID,
		session.Role,
		session.CreatedAt,
		session.ExpiresAt,
		ipAddress,
		session.UserAgent,
	)

	if err != nil {
		return fmt.Errorf("failed to create user session: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", session.UserID.String()).
		Str("tenant_id", session.TenantID.String()).
		Msg("Created user session")

	return nil
}

// GetActive retrieves a session by token with the owner snapshot populated.
func (s *UserSessionStore) GetActive(ctx context.Context, token string) (*models.UserSession, error) {
	query := `
		SELECT
			s.token, s.user_id, s.tenant_id, s.role, s.created_at, s.expires_at,
			s.ip_address, s.user_agent,
			u.email, u.display_name, u.active
		FROM user_sessions s
		JOIN tenant_users u ON u.user_id = s.user_id
		WHERE s.token = $1
	`

	var session models.UserSession
	var ipAddress any
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.TenantID,
		&session.Role,
		&session.CreatedAt,
		&session.ExpiresAt,
		&ipAddress,
		&session.UserAgent,
		&session.Email,
		&session.DisplayName,
		&session.OwnerActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get user session: %w", mapPostgresError(err))
	}

	if ipAddress != nil {
		session.IPAddress = fmt.Sprintf("%v", ipAddress)
	}

	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	if !session.OwnerActive {
		return nil, store.ErrOwnerDisabled
	}

	return &session, nil
}

// Delete deletes a session by token (logout).
func (s *UserSessionStore) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM user_sessions WHERE token = $1`

	result, err := s.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete user session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *UserSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM user_sessions WHERE expires_at < $1`

	result, err := s.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired user sessions: %w", mapPostgresError(err))
	}

	count := int(result.RowsAffected())
	if count > 0 {
		log.Info().Int("count", count).Msg("Deleted expired user sessions")
	}

	return count, nil
}
