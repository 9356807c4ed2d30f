package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vetdesk/vetdesk/internal/store"
	"github.com/vetdesk/vetdesk/internal/telemetry"
)

// Sweeper periodically purges expired sessions from both registries and
// expired entries from the resolution cache. Lazy expiry already keeps
// lookups correct; the sweeper only bounds storage growth.
type Sweeper struct {
	cache         *Cache
	adminSessions store.AdminSessionStore
	userSessions  store.UserSessionStore
	interval      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper starts a background sweep goroutine that runs until Stop is
// called or the parent context is cancelled.
func NewSweeper(
	ctx context.Context,
	cache *Cache,
	adminSessions store.AdminSessionStore,
	userSessions store.UserSessionStore,
	interval time.Duration,
) *Sweeper {
	sweepCtx, cancel := context.WithCancel(ctx)

	s := &Sweeper{
		cache:         cache,
		adminSessions: adminSessions,
		userSessions:  userSessions,
		interval:      interval,
		ctx:           sweepCtx,
		cancel:        cancel,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Stop gracefully stops the sweep goroutine.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info().Msg("Session sweeper stopped")
			return

		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	adminCount, err := s.adminSessions.DeleteExpired(s.ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired admin sessions")
	}

	userCount, err := s.userSessions.DeleteExpired(s.ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired user sessions")
	}

	cacheCount := s.cache.Purge()

	if swept := adminCount + userCount; swept > 0 {
		telemetry.GetMetrics().SessionsSweptTotal.Add(s.ctx, int64(swept))
	}

	if adminCount+userCount+cacheCount > 0 {
		log.Debug().
			Int("admin_sessions", adminCount).
			Int("user_sessions", userCount).
			Int("cache_entries", cacheCount).
			Msg("Swept expired entries")
	}
}
