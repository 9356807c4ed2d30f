package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/vetdesk/vetdesk/internal/auth"
	"github.com/vetdesk/vetdesk/internal/httpx"
	"github.com/vetdesk/vetdesk/internal/logger"
	"github.com/vetdesk/vetdesk/internal/server"
	memorystore "github.com/vetdesk/vetdesk/internal/store/memory"
	postgresstore "github.com/vetdesk/vetdesk/internal/store/postgres"
	"github.com/vetdesk/vetdesk/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"VETDESK_LISTEN"`

	// Authentication configuration
	MasterKey        string        `help:"platform master key; empty disables the master-key scheme" default:"" env:"VETDESK_MASTER_KEY"`
	CacheTTL         time.Duration `help:"resolution cache TTL" default:"300s" env:"VETDESK_CACHE_TTL"`
	SessionTTL       time.Duration `help:"login session TTL" default:"24h" env:"VETDESK_SESSION_TTL"`
	SweepInterval    time.Duration `help:"expired session sweep interval" default:"5m" env:"VETDESK_SWEEP_INTERVAL"`
	ExemptRoutesFile string        `help:"YAML file with additional unauthenticated routes" default:"" env:"VETDESK_EXEMPT_ROUTES_FILE"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"VETDESK_CORS_ORIGINS"`

	// Development and operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"VETDESK_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"VETDESK_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"VETDESK_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "vetdesk-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	// Create registries based on store type
	var reg server.Registries

	switch c.StoreType {
	case "postgres":
		pool, err := c.connectPostgres(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		reg = server.Registries{
			Tenants:       postgresstore.NewTenantStore(pool),
			Admins:        postgresstore.NewAdminStore(pool),
			Users:         postgresstore.NewUserStore(pool),
			AdminSessions: postgresstore.NewAdminSessionStore(pool),
			UserSessions:  postgresstore.NewUserSessionStore(pool),
		}
		log.Info().Msg("Using PostgreSQL registries with shared connection pool")

	default:
		admins := memorystore.NewAdminStore()
		users := memorystore.NewUserStore()
		reg = server.Registries{
			Tenants:       memorystore.NewTenantStore(),
			Admins:        admins,
			Users:         users,
			AdminSessions: memorystore.NewAdminSessionStore(admins),
			UserSessions:  memorystore.NewUserSessionStore(users),
		}
		log.Info().Msg("Using in-memory registries")
	}

	if c.MasterKey == "" {
		log.Warn().Msg("No master key configured; master-key scheme is disabled")
	}

	// Assemble the identity pipeline
	cache := auth.NewCache(c.CacheTTL)
	resolver := auth.NewResolver(reg.AdminSessions, reg.UserSessions, reg.Tenants, c.MasterKey)
	srv := server.NewServer(reg, cache, c.SessionTTL)

	exempt := srv.ExemptRoutes()
	if c.ExemptRoutesFile != "" {
		extra, err := auth.LoadExemptRoutes(c.ExemptRoutesFile)
		if err != nil {
			return fmt.Errorf("failed to load exempt routes: %w", err)
		}
		exempt = exempt.Merge(extra)
	}

	gate := auth.NewGate(resolver, cache, exempt, globals.Debug)

	sweeper := auth.NewSweeper(ctx, cache, reg.AdminSessions, reg.UserSessions, c.SweepInterval)
	defer sweeper.Stop()

	// Middleware chain: CORS, client IP capture, request logging, then the
	// authentication gate in front of every handler.
	handler := cors.New(cors.Options{
		AllowedOrigins: c.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(
		httpx.ClientIPMiddleware()(
			httpx.RequestLogger(log)(
				gate.Middleware()(srv.Handler()))))

	httpServer := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Str("store", c.StoreType).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// connectPostgres creates the shared pool, retrying with exponential backoff
// so the server survives a database that comes up slightly after it does.
func (c *ServerCmd) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	poolCfg := &postgresstore.PoolConfig{
		ConnString:      c.PostgresStore.ConnString,
		MaxConns:        c.PostgresStore.MaxConns,
		MinConns:        c.PostgresStore.MinConns,
		MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
		MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
	}

	pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		return postgresstore.NewPool(ctx, poolCfg)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return pool, nil
}
