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

func newTestTenant(t *testing.T, apiKey string) *models.Tenant {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	return &models.Tenant{
		TenantID:  id,
		Name:      "Sunrise Veterinary Clinic",
		APIKey:    apiKey,
		Status:    models.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTenantStore_Create(t *testing.T) {
	t.Run("create new tenant", func(t *testing.T) {
		st := NewTenantStore()
		ctx := context.Background()

		err := st.Create(ctx, newTestTenant(t, "vdk_abc"))
		require.NoError(t, err)
	})

	t.Run("duplicate tenant returns error", func(t *testing.T) {
		st := NewTenantStore()
		ctx := context.Background()

		tenant := newTestTenant(t, "vdk_abc")
		require.NoError(t, st.Create(ctx, tenant))

		err := st.Create(ctx, tenant)
		require.ErrorIs(t, err, store.ErrTenantAlreadyExists)
	})
}

func TestTenantStore_GetByAPIKey(t *testing.T) {
	st := NewTenantStore()
	ctx := context.Background()

	tenant := newTestTenant(t, "vdk_abc")
	require.NoError(t, st.Create(ctx, tenant))

	t.Run("found", func(t *testing.T) {
		got, err := st.GetByAPIKey(ctx, "vdk_abc")
		require.NoError(t, err)
		require.Equal(t, tenant.TenantID, got.TenantID)
		require.True(t, got.IsActive())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := st.GetByAPIKey(ctx, "vdk_missing")
		require.ErrorIs(t, err, store.ErrTenantNotFound)
	})

	t.Run("inactive tenant is still returned", func(t *testing.T) {
		require.NoError(t, st.SetStatus(ctx, tenant.TenantID, models.TenantStatusInactive))

		got, err := st.GetByAPIKey(ctx, "vdk_abc")
		require.NoError(t, err)
		require.False(t, got.IsActive())
	})
}

func TestTenantStore_UpdateAPIKey(t *testing.T) {
	st := NewTenantStore()
	ctx := context.Background()

	tenant := newTestTenant(t, "vdk_old")
	require.NoError(t, st.Create(ctx, tenant))

	err := st.UpdateAPIKey(ctx, tenant.TenantID, "vdk_new")
	require.NoError(t, err)

	// old key no longer resolves
	_, err = st.GetByAPIKey(ctx, "vdk_old")
	require.ErrorIs(t, err, store.ErrTenantNotFound)

	got, err := st.GetByAPIKey(ctx, "vdk_new")
	require.NoError(t, err)
	require.Equal(t, tenant.TenantID, got.TenantID)
}

func TestTenantStore_SetStatus_unknownTenant(t *testing.T) {
	st := NewTenantStore()

	err := st.SetStatus(context.Background(), uuid.New(), models.TenantStatusInactive)
	require.ErrorIs(t, err, store.ErrTenantNotFound)
}
