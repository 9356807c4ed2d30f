package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCache_getPut(t *testing.T) {
	cache := NewCache(time.Minute)

	_, ok := cache.Get("vds_token")
	require.False(t, ok)

	tenantID, err := uuid.NewV7()
	require.NoError(t, err)

	cache.Put("vds_token", &Principal{
		Kind:     KindTenantAPIKey,
		TenantID: tenantID,
	})

	principal, ok := cache.Get("vds_token")
	require.True(t, ok)
	require.Equal(t, KindTenantAPIKey, principal.Kind)
	require.Equal(t, tenantID, principal.TenantID)

	// A different credential never aliases, even with the same principal.
	_, ok = cache.Get("vds_other")
	require.False(t, ok)
}

func TestCache_returnsCopies(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("vds_token", &Principal{Kind: KindTenantUser, Role: "editor"})

	first, ok := cache.Get("vds_token")
	require.True(t, ok)
	first.Role = "owner"

	second, ok := cache.Get("vds_token")
	require.True(t, ok)
	require.Equal(t, "editor", second.Role)
}

func TestCache_ttlExpiry(t *testing.T) {
	cache := NewCache(20 * time.Millisecond)

	cache.Put("vds_token", &Principal{Kind: KindMasterKey})

	_, ok := cache.Get("vds_token")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	_, ok = cache.Get("vds_token")
	require.False(t, ok)

	// Lazy eviction removed the stale entry on read.
	require.Equal(t, 0, cache.Len())
}

func TestCache_invalidate(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("vds_a", &Principal{Kind: KindMasterKey})
	cache.Put("vds_b", &Principal{Kind: KindMasterKey})

	cache.Invalidate("vds_a")

	_, ok := cache.Get("vds_a")
	require.False(t, ok)

	_, ok = cache.Get("vds_b")
	require.True(t, ok)

	// Invalidating an absent credential is a no-op.
	cache.Invalidate("vds_missing")
	require.Equal(t, 1, cache.Len())
}

func TestCache_purge(t *testing.T) {
	cache := NewCache(20 * time.Millisecond)

	cache.Put("vds_old", &Principal{Kind: KindMasterKey})
	time.Sleep(30 * time.Millisecond)
	cache.Put("vds_fresh", &Principal{Kind: KindMasterKey})

	require.Equal(t, 1, cache.Purge())
	require.Equal(t, 1, cache.Len())

	_, ok := cache.Get("vds_fresh")
	require.True(t, ok)
}

func TestCache_defaultTTL(t *testing.T) {
	require.Equal(t, DefaultCacheTTL, NewCache(0).TTL())
	require.Equal(t, DefaultCacheTTL, NewCache(-time.Second).TTL())
	require.Equal(t, time.Minute, NewCache(time.Minute).TTL())
}
