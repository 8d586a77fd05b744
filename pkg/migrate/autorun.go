package migrate

import (
	"context"
	"fmt"

	"github.com/merrymatch/membership-backend/pkg/config"
	"github.com/merrymatch/membership-backend/pkg/db"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev
// with MEMBERSHIP_AUTO_MIGRATE enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	m, err := New(sqlDB, nil)
	if err != nil {
		return err
	}

	applied, err := m.Up(ctx)
	if err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "applied": applied})
	logg.Info(ctx, "ledger schema up to date")
	return nil
}
