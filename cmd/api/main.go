package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/database"
	"github.com/snic-labs/policy-api/internal/di"
	"github.com/snic-labs/policy-api/internal/observability"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "policy-api",
		Short:         "Insurance policy API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the blacklist cleanup scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), envFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(envFile)
		},
	})
	return root
}

func serve(parent context.Context, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	base := observability.NewJSONLogger(os.Stdout, cfg.LogLevel)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logProvider, err := observability.InitLogging(ctx, cfg, base)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// The injector releases partial resources itself on error, and
	// App.Shutdown releases them after Run.
	a, _, err := di.InitializeApp(ctx, cfg, logger)
	if err != nil {
		if logProvider != nil {
			_ = logProvider.Shutdown(context.Background())
		}
		return fmt.Errorf("initialize app: %w", err)
	}
	if a.Observability != nil {
		a.Observability.LoggerProvider = logProvider
	}
	return a.Run(ctx)
}

func migrate(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := observability.NewJSONLogger(os.Stdout, cfg.LogLevel)
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Info("schema migrated", "driver", cfg.DBDriver)
	return nil
}
