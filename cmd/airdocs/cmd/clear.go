package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/ui"
)

func newClearCmd() *cobra.Command {
	var (
		source string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove indexed documents",
		Long: `Remove all indexed documents, or only those of one source.

Examples:
  airdocs clear --yes
  airdocs clear --source airflow-python-client`,
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

			scope := "all documents"
			if source != "" {
				scope = fmt.Sprintf("documents from %s", source)
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Remove %s? [y/N]: ", scope)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := st.Clear(cmd.Context(), source); err != nil {
				return err
			}

			ui.NewPrinter(cmd.OutOrStdout()).Success("Removed " + scope)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Clear only this source")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
