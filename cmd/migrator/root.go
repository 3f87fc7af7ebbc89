package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
)

func newRootCmd(cfg config.Config, log logger.Logger) *cobra.Command {
	var (
		migrationsPath string
		dsn            string
	)

	cmd := &cobra.Command{
		Use:           "migrator",
		Short:         "Apply or roll back the member directory schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "directory holding the migration files")
	cmd.PersistentFlags().StringVar(&dsn, "dsn", cfg.DB.DSN, "postgres connection string")

	open := func() (*migrate.Migrate, error) {
		if dsn == "" {
			return nil, errors.New("no database DSN configured, set DB_DSN or --dsn")
		}
		return migrate.New("file://"+migrationsPath, dsn)
	}

	cmd.AddCommand(
		newUpCmd(open, log),
		newDownCmd(open, log),
		newVersionCmd(open, log),
	)
	return cmd
}

type openFunc func() (*migrate.Migrate, error)

func newUpCmd(open openFunc, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					log.Info("Schema already up to date")
					return nil
				}
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}

func newDownCmd(open openFunc, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Steps(-steps); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			log.Info("Migrations rolled back", zap.Int("steps", steps))
			return nil
		},
	}
}

func newVersionCmd(open openFunc, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info("No migration applied yet")
				return nil
			}
			if err != nil {
				return err
			}
			log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		},
	}
}
