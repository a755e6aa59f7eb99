package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/ui"
)

func newReadCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "read <source> <path>",
		Short: "Read a full documentation page",
		Long: `Print the complete content of one documentation page, addressed
by source and relative path as shown in search results.

Example:
  airdocs read airflow-core core-concepts/dags.rst`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, path := args[0], args[1]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openExistingStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			doc, err := st.Get(cmd.Context(), source, path)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("document not found: %s/%s", source, path)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "text", "":
				ui.NewPrinter(cmd.OutOrStdout()).Document(doc)
				return nil
			default:
				return fmt.Errorf("unknown format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
