package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/drive/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(c *cobra.Command, args []string) error {
			return withDB(c.Context(), func(database *sqlx.DB) error {
				return db.RunMigrations(c.Context(), database.DB, cfg.DBDriver)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(c *cobra.Command, args []string) error {
			return withDB(c.Context(), func(database *sqlx.DB) error {
				return db.MigrateDown(c.Context(), database.DB, cfg.DBDriver)
			})
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(c *cobra.Command, args []string) error {
			return withDB(c.Context(), func(database *sqlx.DB) error {
				version, err := db.Version(c.Context(), database.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "schema version %d (%s)\n", version, db.Dialect(cfg.DBDriver))
				return nil
			})
		},
	})

	return migrate
}
