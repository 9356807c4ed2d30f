//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

func setupPostgres(t *testing.T, ctx context.Context) *pgxPoolFixture {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))

	return &pgxPoolFixture{
		pool:          pool,
		tenants:       NewTenantStore(pool),
		admins:        NewAdminStore(pool),
		users:         NewUserStore(pool),
		adminSessions: NewAdminSessionStore(pool),
		userSessions:  NewUserSessionStore(pool),
	}
}

type pgxPoolFixture struct {
	pool          *pgxpool.Pool
	tenants       *TenantStore
	admins        *AdminStore
	users         *UserStore
	adminSessions *AdminSessionStore
	userSessions  *UserSessionStore
}

func TestIntegration_Migrations(t *testing.T) {
	ctx := context.Background()
	fx := setupPostgres(t, ctx)

	t.Run("applied versions are recorded", func(t *testing.T) {
		var applied bool
		require.NoError(t, fx.pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = 1)
		`).Scan(&applied))
		require.True(t, applied)
	})

	t.Run("rerunning is a no-op", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, fx.pool))

		var count int
		require.NoError(t, fx.pool.QueryRow(ctx, `
			SELECT count(*) FROM schema_migrations WHERE version = 1
		`).Scan(&count))
		require.Equal(t, 1, count)
	})
}

func TestIntegration_TenantLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := setupPostgres(t, ctx)

	id, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	tenant := &models.Tenant{
		TenantID:  id,
		Name:      "Sunrise Veterinary Clinic",
		APIKey:    "vdk_integration",
		Status:    models.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("create and lookup by api key", func(t *testing.T) {
		require.NoError(t, fx.tenants.Create(ctx, tenant))

		got, err := fx.tenants.GetByAPIKey(ctx, "vdk_integration")
		require.NoError(t, err)
		require.Equal(t, id, got.TenantID)
		require.True(t, got.IsActive())
	})

	t.Run("inactive tenant is returned with status", func(t *testing.T) {
		require.NoError(t, fx.tenants.SetStatus(ctx, id, models.TenantStatusInactive))

		got, err := fx.tenants.GetByAPIKey(ctx, "vdk_integration")
		require.NoError(t, err)
		require.False(t, got.IsActive())
	})

	t.Run("rotate api key", func(t *testing.T) {
		require.NoError(t, fx.tenants.UpdateAPIKey(ctx, id, "vdk_rotated"))

		_, err := fx.tenants.GetByAPIKey(ctx, "vdk_integration")
		require.ErrorIs(t, err, store.ErrTenantNotFound)

		got, err := fx.tenants.GetByAPIKey(ctx, "vdk_rotated")
		require.NoError(t, err)
		require.Equal(t, id, got.TenantID)
	})
}

func TestIntegration_UserSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := setupPostgres(t, ctx)

	tenantID, err := uuid.NewV7()
	require.NoError(t, err)
	userID, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, fx.tenants.Create(ctx, &models.Tenant{
		TenantID:  tenantID,
		Name:      "Sunrise Veterinary Clinic",
		APIKey:    "vdk_sessions",
		Status:    models.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, fx.users.Create(ctx, &models.TenantUser{
		UserID:       userID,
		TenantID:     tenantID,
		Email:        "vet@sunrise.example",
		DisplayName:  "Dr Vet",
		Role:         "editor",
		PasswordHash: "unused",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	require.NoError(t, fx.userSessions.Create(ctx, &models.UserSession{
		Token:     "vds_integration",
		UserID:    userID,
		TenantID:  tenantID,
		Role:      "editor",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
		IPAddress: "203.0.113.9",
		UserAgent: "vetdesk-integration",
	}))

	t.Run("active session joins owner snapshot", func(t *testing.T) {
		got, err := fx.userSessions.GetActive(ctx, "vds_integration")
		require.NoError(t, err)
		require.Equal(t, tenantID, got.TenantID)
		require.Equal(t, "editor", got.Role)
		require.Equal(t, "vet@sunrise.example", got.Email)
		require.True(t, got.OwnerActive)
	})

	t.Run("deactivated owner invalidates session", func(t *testing.T) {
		require.NoError(t, fx.users.SetActive(ctx, userID, false))

		_, err := fx.userSessions.GetActive(ctx, "vds_integration")
		require.ErrorIs(t, err, store.ErrOwnerDisabled)

		require.NoError(t, fx.users.SetActive(ctx, userID, true))
	})

	t.Run("logout deletes session", func(t *testing.T) {
		require.NoError(t, fx.userSessions.Delete(ctx, "vds_integration"))

		_, err := fx.userSessions.GetActive(ctx, "vds_integration")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("expired sessions are purged", func(t *testing.T) {
		require.NoError(t, fx.userSessions.Create(ctx, &models.UserSession{
			Token:     "vds_stale",
			UserID:    userID,
			TenantID:  tenantID,
			Role:      "editor",
			CreatedAt: now.Add(-48 * time.Hour),
			ExpiresAt: now.Add(-24 * time.Hour),
		}))

		count, err := fx.userSessions.DeleteExpired(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestIntegration_AdminSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := setupPostgres(t, ctx)

	adminID, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, fx.admins.Create(ctx, &models.PlatformAdmin{
		AdminID:      adminID,
		Email:        "ops@vetdesk.example",
		DisplayName:  "Platform Ops",
		PasswordHash: "unused",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	require.NoError(t, fx.adminSessions.Create(ctx, &models.AdminSession{
		Token:     "vds_admin_integration",
		AdminID:   adminID,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}))

	got, err := fx.adminSessions.GetActive(ctx, "vds_admin_integration")
	require.NoError(t, err)
	require.Equal(t, adminID, got.AdminID)
	require.True(t, got.OwnerActive)

	require.NoError(t, fx.admins.SetActive(ctx, adminID, false))

	_, err = fx.adminSessions.GetActive(ctx, "vds_admin_integration")
	require.ErrorIs(t, err, store.ErrOwnerDisabled)
}
