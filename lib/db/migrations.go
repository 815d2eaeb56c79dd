package db

import (
	"context"
	"fmt"

	"log/slog"

	"gorm.io/gorm"

	"github.com/moodreel/moodreel/models"
)

// RunMigrations brings the sqlite schema up to date and applies connection
// pragmas. Called once at startup before the store is used.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
	}

	if err := db.AutoMigrate(&models.WatchlistItem{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("database migrations complete")
	return nil
}

// enableSQLiteOptimizations applies pragmas for a single-writer web app:
// WAL for concurrent readers, a busy timeout instead of immediate lock errors.
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	logger.Debug("applied sqlite pragmas", slog.Int("count", len(pragmas)))
	return nil
}
