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

// AdminSessionStore implements store.AdminSessionStore using PostgreSQL.
type AdminSessionStore struct {
	pool *pgxpool.Pool
}

// NewAdminSessionStore creates a new PostgreSQL-backed admin session store.
func NewAdminSessionStore(pool *pgxpool.Pool) *AdminSessionStore {
	return &AdminSessionStore{
		pool: pool,
	}
}

// Create creates a new session in the database.
func (s *AdminSessionStore) Create(ctx context.Context, session *models.AdminSession) error {
	query := `
		INSERT INTO admin_sessions (
			token, admin_id, created_at, expires_at, ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4, $5::inet, $6
		)
	`

	// Convert empty IP address to nil for proper INET handling
	var ipAddress any
	if session.IPAddress != "" {
		ipAddress = session.IPAddress
	}

	_, err := s.pool.Exec(ctx, query,
		session.Token,
		session.AdminID,
		session.CreatedAt,
		session.ExpiresAt,
		ipAddress,
		session.UserAgent,
	)

	if err != nil {
		return fmt.Errorf("failed to create admin session: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("admin_id", session.AdminID.String()).
		Msg("Created admin session")

	return nil
}

// GetActive retrieves a session by token, joining the owning admin so the
// owner snapshot reflects the current active flag. Expired sessions and
// sessions whose owner has been deactivated map to distinct sentinels.
func (s *AdminSessionStore) GetActive(ctx context.Context, token string) (*models.AdminSession, error) {
	query := `
		SELECT
			s.token, s.admin_id, s.created_at, s.expires_at,
			s.ip_address, s.user_agent,
			a.email, a.display_name, a.active
		FROM admin_sessions s
		JOIN platform_admins a ON a.admin_id = s.admin_id
		WHERE s.token = $1
	`

	var session models.AdminSession
	var ipAddress any
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.AdminID,
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
		return nil, fmt.Errorf("failed to get admin session: %w", mapPostgresError(err))
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
func (s *AdminSessionStore) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM admin_sessions WHERE token = $1`

	result, err := s.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete admin session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *AdminSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM admin_sessions WHERE expires_at < $1`

	result, err := s.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired admin sessions: %w", mapPostgresError(err))
	}

	count := int(result.RowsAffected())
	if count > 0 {
		log.Info().Int("count", count).Msg("Deleted expired admin sessions")
	}

	return count, nil
}
