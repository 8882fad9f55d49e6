// Command report prints the dashboard's tables in the terminal and writes
// the 2025 prediction export without starting the web server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uddannelsebi/internal/config"
	"uddannelsebi/internal/infrastructure"
	"uddannelsebi/internal/services"
	"uddannelsebi/pkg/contracts"
)

// report flags
type options struct {
	configFile string
	dataDir    string
	logLevel   string
}

// env is what every subcommand works with once the root command has run
type env struct {
	service *services.DashboardService
	paths   *config.Paths
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Fejl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts options
		e    env
	)

	root := &cobra.Command{
		Use:   "report",
		Short: "Frafald og fuldførelse på videregående uddannelser i terminalen",
		Long: `Print the dashboard's tables in the terminal.

The command reads the same workbooks as the web dashboard, located through
the same configuration (.env, config file and UDD_* variables).

Examples:
  report institutions                     # totals per institution type
  report lines --line "Sundhed"           # dropout rates of one subject line
  report predict --top frafaldsprocent    # top 20 predicted dropout rates
  report export -o forudsigelse_2025.xlsx # write the prediction table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       contracts.GetFullVersionString(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			paths, err := cfg.Paths()
			if err != nil {
				return err
			}
			logger := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			e.paths = paths
			e.service = services.NewDashboardService(paths, nil, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.dataDir, "data", "", "directory holding the workbooks (overrides the configuration)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newInstitutionsCmd(&e),
		newMapCmd(&e),
		newLinesCmd(&e),
		newPredictCmd(&e),
		newExportCmd(&e),
	)
	return root
}

// loadConfig reads the configuration the way the server does and applies
// the command line overrides on top.
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.dataDir != "" {
		if cfg.Data.Dir, err = filepath.Abs(opts.dataDir); err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
	}
	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Format = "text"
	return cfg, nil
}
