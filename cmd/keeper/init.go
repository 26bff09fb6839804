package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file, data directory and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(a.configDir, a.flagDataDir)
			if err != nil {
				return sysError(err)
			}
			if err := os.MkdirAll(a.settings.DataDir, 0o755); err != nil {
				return sysError(fmt.Errorf("create data directory: %w", err))
			}

			if err := sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				return l.EnsureUsersTable(cmd.Context())
			}); err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Keeper initialized successfully")
			if written {
				fmt.Fprintln(out, "  config:", a.configDir)
			}
			fmt.Fprintln(out, "  data:  ", a.settings.DataDir)
			return nil
		},
	}
}
