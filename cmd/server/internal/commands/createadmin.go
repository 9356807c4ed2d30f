package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk/internal/logger"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/password"
	postgresstore "github.com/vetdesk/vetdesk/internal/store/postgres"
)

// CreateAdminCmd provisions a platform admin directly in the database. There
// is no API route for this; the first admin has to come from somewhere.
type CreateAdminCmd struct {
	Email       string `help:"admin email address" required:""`
	Password    string `help:"admin password" required:"" env:"VETDESK_ADMIN_PASSWORD"`
	DisplayName string `help:"admin display name" default:""`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *CreateAdminCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString: c.PostgresStore.ConnString,
		MaxConns:   1,
		MinConns:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if c.PostgresStore.AutoMigrate {
		if err := postgresstore.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	hash, err := password.Hash(c.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminID, err := uuid.NewV7()
	if err != nil {
		return err
	}

	displayName := c.DisplayName
	if displayName == "" {
		displayName = c.Email
	}

	admin := &models.PlatformAdmin{
		AdminID:      adminID,
		Email:        c.Email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Active:       true,
	}

	if err := postgresstore.NewAdminStore(pool).Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("email", c.Email).
		Msg("Platform admin created")

	return nil
}
