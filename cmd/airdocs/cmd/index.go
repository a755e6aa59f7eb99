package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/indexer"
	"github.com/airdocs-mcp/airdocs/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var (
		source  string
		branch  string
		rebuild bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Fetch and index Airflow documentation",
		Long: `Clone the Airflow documentation repositories (sparse, shallow)
and index their pages into the local full-text index.

Examples:
  airdocs index
  airdocs index --source airflow-core
  airdocs index --rebuild
  airdocs index --branch v3-0-stable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if branch == "" {
				branch = cfg.Branch
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			printer := ui.NewPrinter(cmd.OutOrStdout())
			ix := indexer.New(st, nil).WithLock(lockDir(cfg))

			var summary *indexer.Summary
			if source != "" {
				printer.Plain("Indexing %s (branch %s)...", source, branch)
				summary, err = ix.IndexSource(cmd.Context(), source, branch, rebuild)
			} else {
				printer.Plain("Indexing all sources (branch %s)...", branch)
				summary, err = ix.IndexAll(cmd.Context(), branch, rebuild)
			}
			if err != nil {
				return err
			}

			printer.IndexSummary(summary.Counts, summary.Total,
				fmt.Sprintf("%.1fs", summary.Elapsed.Seconds()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Index a single source (airflow-core, airflow-python-client)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Git branch to index (default: from config)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Clear existing documents before indexing")
	return cmd
}
