package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/ui"
)

func newSectionsCmd() *cobra.Command {
	var (
		source string
		format string
	)

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List documentation sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openExistingStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			sections, err := st.Sections(cmd.Context(), source)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sections)
			case "text", "":
				ui.NewPrinter(cmd.OutOrStdout()).Sections(source, sections)
				return nil
			default:
				return fmt.Errorf("unknown format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Filter by source")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
