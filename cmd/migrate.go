package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/adapters/out/postgres/migrations"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the postgres schema",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd.Flags(), v, map[string]string{
				keyDatabaseURL: "database-url",
				keyLogLevel:    "log-level",
			})
		},
	}
	migrate.PersistentFlags().String("database-url", "", "postgres connection URL")
	migrate.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				url, logger, err := migrateSetup(v)
				if err != nil {
					return err
				}
				return migrations.Up(url, logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				url, logger, err := migrateSetup(v)
				if err != nil {
					return err
				}
				return migrations.Down(url, logger)
			},
		},
	)
	return migrate
}

// migrateSetup needs only the database URL and the log level, so it does not
// validate the rest of the configuration.
func migrateSetup(v *viper.Viper) (string, *slog.Logger, error) {
	url := v.GetString(keyDatabaseURL)
	if url == "" {
		return "", nil, errors.New(keyDatabaseURL + " is required")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return "", nil, fmt.Errorf("%s: %w", keyLogLevel, err)
	}
	return url, newLogger(level), nil
}
