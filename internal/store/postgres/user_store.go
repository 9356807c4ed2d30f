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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed tenant-user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create creates a new tenant user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.TenantUser) error {
	query := `
		INSERT INTO tenant_users (
			user_id, tenant_id, email, display_name, role, password_hash, active, created_at, updated_at
		) VALUES (
			$1, $2, lower($3), $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.TenantID,
		user.Email,
		user.DisplayName,
		user.Role,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", user.TenantID.String()).
		Msg("Created tenant user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.TenantUser, error) {
	query := `
		SELECT user_id, tenant_id, email, display_name, role, password_hash, active, created_at, updated_at
		FROM tenant_users
		WHERE user_id = $1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, userID))
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.TenantUser, error) {
	query := `
		SELECT user_id, tenant_id, email, display_name, role, password_hash, active, created_at, updated_at
		FROM tenant_users
		WHERE email = lower($1)
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

// SetActive activates or deactivates a user account.
func (s *UserStore) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	query := `
		UPDATE tenant_users
		SET active = $2, updated_at = $3
		WHERE user_id = $1
	`

	result, err := s.pool.Exec(ctx, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Info().
		Str("user_id", userID.String()).
		Bool("active", active).
		Msg("Updated tenant user status")

	return nil
}

func (s *UserStore) scanUser(row pgx.Row) (*models.TenantUser, error) {
	var user models.TenantUser
	err := row.Scan(
		&user.UserID,
		&user.TenantID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return &user, nil
}
