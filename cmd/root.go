package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the CLI: serve (the default) and migrate.
func NewRootCommand() *cobra.Command {
	v := newViper()

	root := &cobra.Command{
		Use:           "dispatch",
		Short:         "Campus courier dispatch service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCommand(v)
	root.AddCommand(serve, newMigrateCommand(v))
	root.Args = cobra.NoArgs
	root.PreRunE = serve.PreRunE
	root.RunE = serve.RunE
	defineServeFlags(root.Flags())

	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCommand().Execute() }

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig(v *viper.Viper) (Config, *slog.Logger, error) {
	cfg, err := LoadConfig(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
