package planboard

import (
	"context"
	"fmt"
)

// Migrate brings the active store's schema up to date with the data
// model. PostgreSQL uses GORM AutoMigrate; SurrealDB defines indexes,
// tables appearing implicitly on first write. Safe to run repeatedly.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.log.Info().Msg("running database migrations")
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.log.Info().Msg("migrations completed")
	return nil
}
