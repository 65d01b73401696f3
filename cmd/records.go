package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/urlingest/internal/config"
	"github.com/user/urlingest/internal/db"
)

var (
	recordsLimit    int
	jsonOutput      bool
	plaintextOutput bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List stored records",
	Long:  "List the most recently ingested records, newest first.",
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

		records, err := store.ListRecent(cmd.Context(), recordsLimit)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if jsonOutput {
			return outputJSON(records)
		}
		if plaintextOutput {
			return outputPlaintext(records)
		}
		return outputDefault(records)
	},
}

func outputJSON(records []db.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(records []db.Record) error {
	for _, r := range records {
		fmt.Printf("%s\t%s\t%s\n", r.Kind, r.Title, r.URL)
	}
	return nil
}

func outputDefault(records []db.Record) error {
	if len(records) == 0 {
		fmt.Println("No records yet.")
		return nil
	}
	for i, r := range records {
		icon := kindIcon(r.Kind)
		title := r.Title
		if title == "" {
			title = r.URL
		}
		fmt.Printf("%d. %s %s\n   %s\n", i+1, icon, title, r.URL)
		if r.Error != "" {
			fmt.Printf("   error: %s\n", r.Error)
		} else if r.Summary != "" {
			fmt.Printf("   %s\n", truncate(r.Summary, 100))
		}
		fmt.Println()
	}
	return nil
}

func kindIcon(kind string) string {
	switch kind {
	case "youtube":
		return "[Y]"
	case "webpage":
		return "[W]"
	default:
		return "[?]"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	recordsCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 20, "Maximum number of records")
	recordsCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	recordsCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	rootCmd.AddCommand(recordsCmd)
}
