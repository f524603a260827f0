package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/avatarctic/article-cache-api/configs"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/db"
)

func migrateCmd() *cobra.Command {
	var (
		path  string
		steps int
	)

	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply or roll back database migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg)
			if cmd.Flags().Changed("path") {
				cfg.Database.MigrationsPath = path
			}

			database, err := db.NewDatabaseWithConfig(&cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			fields := logrus.Fields{"path": cfg.Database.MigrationsPath, "direction": direction}

			switch direction {
			case "up":
				if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
					return err
				}
			case "down":
				if err := database.Rollback(cfg.Database.MigrationsPath, steps); err != nil {
					return err
				}
				fields["steps"] = steps
			case "version":
			default:
				return fmt.Errorf("unknown migrate direction %q", direction)
			}

			version, dirty, err := database.MigrationVersion(cfg.Database.MigrationsPath)
			if err != nil {
				return err
			}
			fields["version"] = version
			fields["dirty"] = dirty
			logger.WithFields(fields).Info("migrations done")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Migrations directory (defaults to DB_MIGRATIONS_PATH)")
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back with down")
	return cmd
}
