// Root command and global flags for the keeper CLI.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/internal/logging"
	"github.com/mesh-intelligence/keeper/internal/paths"
)

// Version is the keeper release, overridable at link time.
var Version = "0.1.0"

// app holds global flag values and the settings resolved from them. Each
// root command gets its own app so tests can run commands in-process.
type app struct {
	flagConfigDir string
	flagDataDir   string
	flagLogLevel  string
	flagJSON      bool

	configDir string
	settings  settings
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "keeper",
		Short:         "Keeper stores user credentials and bulk-loads CSV/JSON into SQLite",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir/keeper)")
	root.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.keeper)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newUsersCmd(a))
	root.AddCommand(newDBCmd(a))

	return root
}

// load resolves directories, reads config.yaml and installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = configDir

	s, err := loadSettings(configDir, a.flagDataDir)
	if err != nil {
		return sysError(err)
	}
	if a.flagLogLevel != "" {
		s.LogLevel = a.flagLogLevel
	}
	a.settings = s
	a.logger = logging.Setup(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	return nil
}
