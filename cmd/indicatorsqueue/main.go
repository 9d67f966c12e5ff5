package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"IndicatorsQueue/internal/app"
	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/logging"
)

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "indicatorsqueue",
		Short:         "Region indicators queue builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (overrides INDICATORS_QUEUE_CONFIG)")

	root.AddCommand(runCmd(), serveCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Rebuild the queue once and print the run summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			result, err := application.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("rebuild: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cron scheduler and the admin HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			return application.Serve(cmd.Context())
		},
	}
}

func bootstrap(ctx context.Context) (*app.Application, *slog.Logger, error) {
	if cfgFile != "" {
		if err := os.Setenv(config.PathEnv, cfgFile); err != nil {
			return nil, nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return nil, nil, err
	}
	return application, logger, nil
}

func closeApp(application *app.Application, logger *slog.Logger) {
	if err := application.Close(); err != nil {
		logger.Error("close application", "error", err)
	}
}
