package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/db"
	"github.com/user/urlingest/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Ingest a single URL",
	Long:  "Run the extraction and synthesis pipeline for one URL and print the result.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		pl := pipeline.New(cfg, store, logger)

		visit := pipeline.Visit{URL: args[0], Source: pipeline.SourceCLI}.Normalize(time.Now())
		out := pl.Process(cmd.Context(), visit)

		if out.Err != "" {
			return fmt.Errorf("ingest failed: %s", out.Err)
		}

		fmt.Printf("%s\n%s\n\n", out.Extraction.Title, visit.URL)
		if out.Analysis != nil {
			fmt.Println("Key points:")
			for _, p := range out.Analysis.KeyPoints {
				fmt.Printf("  - %s\n", p)
			}
			if len(out.Analysis.Concepts) > 0 {
				fmt.Printf("\nConcepts: %s\n", strings.Join(out.Analysis.Concepts, ", "))
			}
			fmt.Printf("\n%s\n", out.Analysis.Summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
