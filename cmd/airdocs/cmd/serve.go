package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/airdocs-mcp/airdocs/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP documentation server",
		Long: `Run the MCP server over stdio.

AI clients call the tools search_documentation, read_documentation,
get_sections, and get_statistics against the local index. Build the
index first with 'airdocs index'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}

			st, err := openExistingStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			server, err := mcp.NewServer(st, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("serve_started",
				slog.String("db", cfg.DBPath),
				slog.String("backend", cfg.Search.Backend))
			return server.Serve(ctx, cfg.Server.Transport)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport (stdio)")
	return cmd
}
