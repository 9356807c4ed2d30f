package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

func newTestAdmin(t *testing.T) *models.PlatformAdmin {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	return &models.PlatformAdmin{
		AdminID:      id,
		Email:        "ops@vetdesk.example",
		DisplayName:  "Platform Ops",
		PasswordHash: "unused",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAdminSessionStore_GetActive(t *testing.T) {
	ctx := context.Background()

	admins := NewAdminStore()
	sessions := NewAdminSessionStore(admins)

	admin := newTestAdmin(t)
	require.NoError(t, admins.Create(ctx, admin))

	session := &models.AdminSession{
		Token:     "vds_admin1",
		AdminID:   admin.AdminID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		IPAddress: "203.0.113.7",
		UserAgent: "vetdesk-test",
	}
	require.NoError(t, sessions.Create(ctx, session))

	t.Run("valid session carries owner snapshot", func(t *testing.T) {
		got, err := sessions.GetActive(ctx, "vds_admin1")
		require.NoError(t, err)
		require.Equal(t, admin.AdminID, got.AdminID)
		require.Equal(t, admin.Email, got.Email)
		require.True(t, got.OwnerActive)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := sessions.GetActive(ctx, "vds_missing")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("expired session", func(t *testing.T) {
		expired := &models.AdminSession{
			Token:     "vds_admin_expired",
			AdminID:   admin.AdminID,
			CreatedAt: time.Now().Add(-48 * time.Hour),
			ExpiresAt: time.Now().Add(-24 * time.Hour),
		}
		require.NoError(t, sessions.Create(ctx, expired))

		_, err := sessions.GetActive(ctx, "vds_admin_expired")
		require.ErrorIs(t, err, store.ErrSessionExpired)
	})

	t.Run("deactivated owner invalidates unexpired session", func(t *testing.T) {
		require.NoError(t, admins.SetActive(ctx, admin.AdminID, false))

		_, err := sessions.GetActive(ctx, "vds_admin1")
		require.ErrorIs(t, err, store.ErrOwnerDisabled)

		require.NoError(t, admins.SetActive(ctx, admin.AdminID, true))
	})
}

func TestAdminSessionStore_Delete(t *testing.T) {
	ctx := context.Background()

	admins := NewAdminStore()
	sessions := NewAdminSessionStore(admins)

	admin := newTestAdmin(t)
	require.NoError(t, admins.Create(ctx, admin))
	require.NoError(t, sessions.Create(ctx, &models.AdminSession{
		Token:     "vds_admin1",
		AdminID:   admin.AdminID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, sessions.Delete(ctx, "vds_admin1"))

	_, err := sessions.GetActive(ctx, "vds_admin1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	err = sessions.Delete(ctx, "vds_admin1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestUserSessionStore_GetActive(t *testing.T) {
	ctx := context.Background()

	users := NewUserStore()
	sessions := NewUserSessionStore(users)

	tenantID, err := uuid.NewV7()
	require.NoError(t, err)
	userID, err := uuid.NewV7()
	require.NoError(t, err)

	user := &models.TenantUser{
		UserID:      userID,
		TenantID:    tenantID,
		Email:       "vet@sunrise.example",
		DisplayName: "Dr Vet",
		Role:        "editor",
		Active:      true,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, sessions.Create(ctx, &models.UserSession{
		Token:     "vds_user1",
		UserID:    userID,
		TenantID:  tenantID,
		Role:      "editor",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}))

	t.Run("valid session", func(t *testing.T) {
		got, err := sessions.GetActive(ctx, "vds_user1")
		require.NoError(t, err)
		require.Equal(t, tenantID, got.TenantID)
		require.Equal(t, "editor", got.Role)
		require.True(t, got.OwnerActive)
	})

	t.Run("deactivated owner invalidates unexpired session", func(t *testing.T) {
		require.NoError(t, users.SetActive(ctx, userID, false))

		_, err := sessions.GetActive(ctx, "vds_user1")
		require.ErrorIs(t, err, store.ErrOwnerDisabled)
	})
}

func TestUserSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()

	users := NewUserStore()
	sessions := NewUserSessionStore(users)

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, &models.UserSession{
		Token:     "vds_live",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, sessions.Create(ctx, &models.UserSession{
		Token:     "vds_stale1",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, sessions.Create(ctx, &models.UserSession{
		Token:     "vds_stale2",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	count, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
