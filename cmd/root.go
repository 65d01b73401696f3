package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/db"
	"github.com/user/urlingest/internal/pipeline"
	"github.com/user/urlingest/internal/server"
)

var (
	flagHost   string
	flagPort   int
	flagReload bool
)

var rootCmd = &cobra.Command{
	Use:   "urlingest",
	Short: "URL ingestion service",
	Long:  "Receives visited URLs from a browser extension, extracts their content (webpage or YouTube transcript), summarizes it, and keeps an append-only record log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("host") {
			cfg.Server.Host = flagHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = flagPort
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		if flagReload {
			logger.Warn("live reload is not available in a compiled binary, starting normally")
		}

		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pl := pipeline.New(cfg, store, logger)
		return server.New(pl, store, logger).Run(ctx, cfg.Server.Host, cfg.Server.Port)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagHost, "host", "0.0.0.0", "Address to bind")
	rootCmd.Flags().IntVar(&flagPort, "port", 8000, "Port to listen on")
	rootCmd.Flags().BoolVar(&flagReload, "reload", false, "Reload on code changes (unsupported, accepted for compatibility)")
}
