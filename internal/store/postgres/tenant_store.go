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

// TenantStore implements store.TenantStore using PostgreSQL.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a new PostgreSQL-backed tenant store.
// It shares the connection pool with the other stores.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{
		pool: pool,
	}
}

// Create creates a new tenant in the database.
func (s *TenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (
			tenant_id, name, api_key, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.pool.Exec(ctx, query,
		tenant.TenantID,
		tenant.Name,
		tenant.APIKey,
		tenant.Status,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTenantAlreadyExists
		}
		return fmt.Errorf("failed to create tenant: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("tenant_id", tenant.TenantID.String()).
		Str("name", tenant.Name).
		Msg("Created tenant")

	return nil
}

// Get retrieves a tenant by ID.
func (s *TenantStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT tenant_id, name, api_key, status, created_at, updated_at
		FROM tenants
		WHERE tenant_id = $1
	`

	var tenant models.Tenant
	err := s.pool.QueryRow(ctx, query, tenantID).Scan(
		&tenant.TenantID,
		&tenant.Name,
		&tenant.APIKey,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", mapPostgresError(err))
	}

	return &tenant, nil
}

// GetByAPIKey retrieves a tenant by exact API-key match regardless of status.
// The resolver applies the active check so it can distinguish "exists but
// disabled" from "not found".
func (s *TenantStore) GetByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	query := `
		SELECT tenant_id, name, api_key, status, created_at, updated_at
		FROM tenants
		WHERE api_key = $1
	`

	var tenant models.Tenant
	err := s.pool.QueryRow(ctx, query, apiKey).Scan(
		&tenant.TenantID,
		&tenant.Name,
		&tenant.APIKey,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by api key: %w", mapPostgresError(err))
	}

	return &tenant, nil
}

// UpdateAPIKey replaces the tenant's API key (rotation).
func (s *TenantStore) UpdateAPIKey(ctx context.Context, tenantID uuid.UUID, apiKey string) error {
	query := `
		UPDATE tenants
		SET api_key = $2, updated_at = $3
		WHERE tenant_id = $1
	`

	result, err := s.pool.Exec(ctx, query, tenantID, apiKey, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rotate api key: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTenantNotFound
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Msg("Rotated tenant API key")

	return nil
}

// SetStatus activates or deactivates a tenant.
func (s *TenantStore) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.TenantStatus) error {
	query := `
		UPDATE tenants
		SET status = $2, updated_at = $3
		WHERE tenant_id = $1
	`

	result, err := s.pool.Exec(ctx, query, tenantID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTenantNotFound
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("status", string(status)).
		Msg("Updated tenant status")

	return nil
}
