package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/templui/drive/internal/config"
	"github.com/templui/drive/internal/db"
	"github.com/templui/drive/internal/logger"
)

var cfg *config.Config

func InitLogger() {
	cfg = config.LoadDatabase()
	logger.Init(logger.Options{Development: cfg.IsDevelopment(), Service: "drivectl"})
}

// withDB opens the configured database, runs fn and closes it again
func withDB(ctx context.Context, fn func(database *sqlx.DB) error) error {
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	return fn(database)
}
