package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse records in a TUI",
	Long:  "Open an interactive browser over the stored record log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return tui.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
