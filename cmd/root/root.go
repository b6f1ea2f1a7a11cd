// Package root contains the root command of finsort.
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finsort/internal/config"
	"fjacquet/finsort/internal/container"
	"fjacquet/finsort/internal/logging"
)

var (
	// Log is the shared logger of the commands. It is replaced by the
	// configured logger before any subcommand runs.
	Log = logging.GetLogger()

	// AppContainer holds the wired dependencies of the running command.
	AppContainer *container.Container

	// ConfigFile overrides the config.yaml search.
	ConfigFile string
	// LogLevel overrides log.level when set.
	LogLevel string
	// Mode is "local" (taxonomy files) or "remote" (REST backend).
	Mode string

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "finsort",
		Short: "Classify ledger transactions and summarize them by classification.",
		Long: `finsort walks the unclassified transactions of a ledger one by one,
records each decision in the expense and income taxonomies, reclassifies the
whole ledger and prints expense and income totals per classification.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(Log)

			cfg, err := config.LoadConfig(ConfigFile)
			if err != nil {
				return err
			}
			if LogLevel != "" {
				cfg.Log.Level = LogLevel
			}

			c, err := container.NewContainer(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			AppContainer = c
			Log = c.GetLogger()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer == nil {
				return nil
			}
			return AppContainer.Close()
		},
	}
)

func init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.finsort, .finsort or .)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	Cmd.PersistentFlags().StringVarP(&Mode, "mode", "m", string(container.Local), "Backend: local taxonomy files or remote REST backend")
}

// CurrentMode parses the --mode flag.
func CurrentMode() (container.Mode, error) {
	return container.ParseMode(Mode)
}
