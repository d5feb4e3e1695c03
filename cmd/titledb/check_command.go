package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"titledb/internal/credential"
	"titledb/internal/preflight"
	"titledb/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, credentials, and endpoint reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			client := services.NewHTTPClient(cfg.HTTPTimeout(), credential.ServerTLSConfig(cfg.Endpoints.VerifyTLS))
			defer client.CloseIdleConnections()

			results := preflight.RunAll(cmd.Context(), cfg, client)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil, nil))
			return preflight.Err(results)
		},
	}
}
