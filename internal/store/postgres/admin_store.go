package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

// AdminStore implements store.AdminStore using PostgreSQL.
type AdminStore struct {
	pool *pgxpool.Pool
}

// NewAdminStore creates a new PostgreSQL-backed platform-admin store.
func NewAdminStore(pool *pgxpool.Pool) *AdminStore {
	return &AdminStore{
		pool: pool,
	}
}

// Create creates a new platform admin in the database.
func (s *AdminStore) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	query := `
		INSERT INTO platform_admins (
			admin_id, email, display_name, password_hash, active, created_at, updated_at
		) VALUES (
			$1, lower($2), $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		admin.AdminID,
		admin.Email,
		admin.DisplayName,
		admin.PasswordHash,
		admin.Active,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to create admin: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("admin_id", admin.AdminID.String()).
		Msg("Created platform admin")

	return nil
}

// Get retrieves an admin by ID.
func (s *AdminStore) Get(ctx context.Context, adminID uuid.UUID) (*models.PlatformAdmin, error) {
	query := `
		SELECT admin_id, email, display_name, password_hash, active, created_at, updated_at
		FROM platform_admins
		WHERE admin_id = $1
	`

	return s.scanAdmin(s.pool.QueryRow(ctx, query, adminID))
}

// GetByEmail retrieves an admin by email (case-insensitive).
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error) {
	query := `
		SELECT admin_id, email, display_name, password_hash, active, created_at, updated_at
		FROM platform_admins
		WHERE email = lower($1)
	`

	return s.scanAdmin(s.pool.QueryRow(ctx, query, email))
}

// SetActive activates or deactivates an admin account.
func (s *AdminStore) SetActive(ctx context.Context, adminID uuid.UUID, active bool) error {
	query := `
		UPDATE platform_admins
		SET active = $2, updated_at = $3
		WHERE admin_id = $1
	`

	result, err := s.pool.Exec(ctx, query, adminID, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrAdminNotFound
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Bool("active", active).
		Msg("Updated platform admin status")

	return nil
}

func (s *AdminStore) scanAdmin(row pgx.Row) (*models.PlatformAdmin, error) {
	var admin models.PlatformAdmin
	err := row.Scan(
		&admin.AdminID,
		&admin.Email,
		&admin.DisplayName,
		&admin.PasswordHash,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", mapPostgresError(err))
	}

	return &admin, nil
}
