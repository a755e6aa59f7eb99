package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/store"
	"github.com/airdocs-mcp/airdocs/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var (
		source  string
		section string
		limit   int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the documentation index",
		Long: `Search the indexed Airflow documentation with ranked full-text
search. Title matches rank above description and body matches.

Examples:
  airdocs search "dynamic task mapping"
  airdocs search scheduler --source airflow-core --limit 5
  airdocs search "DAG(schedule)" --section "Core Concepts"
  airdocs search pools --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openExistingStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if limit > cfg.Search.MaxResults {
				limit = cfg.Search.MaxResults
			}

			results, err := st.Search(cmd.Context(), query, store.SearchOptions{
				Source:  source,
				Section: section,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "text", "":
				ui.NewPrinter(cmd.OutOrStdout()).SearchResults(query, results)
				return nil
			default:
				return fmt.Errorf("unknown format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Filter by source (airflow-core, airflow-python-client)")
	cmd.Flags().StringVar(&section, "section", "", "Filter by section (e.g. \"Core Concepts\")")
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultLimit, "Maximum number of results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
