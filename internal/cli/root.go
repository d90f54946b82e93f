// Package cli implements the plashboard command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhytabest/plashboard/internal/api"
	"github.com/jhytabest/plashboard/internal/config"
	"github.com/jhytabest/plashboard/internal/logging"
	"github.com/jhytabest/plashboard/internal/runtime"
)

var (
	flagConfigFile string
	flagDataDir    string
	flagJSON       bool
	flagLogLevel   string

	loadedConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "plashboard",
	Short: "Template-driven dashboard publishing runtime",
	Long: `Plashboard maintains dashboard templates, periodically fills them from a
configurable provider, validates the merged result against the layout
budget, and atomically publishes the approved document.

One process owns the data directory: do not run mutating commands against
a data directory while "plashboard serve" is running on it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		if flagConfigFile != "" {
			loader.SetConfigFile(flagConfigFile)
		}
		cfg, err := loader.Load()
		if err != nil {
			return err
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagLogLevel != "" {
			cfg.Logging.Level = flagLogLevel
		}
		loadedConfig = cfg

		return logging.Setup(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the data directory")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override the log level")
}

// GetConfig returns the resolved configuration for the current invocation.
func GetConfig() *config.Config {
	return loadedConfig
}

// newService builds an initialized runtime and its API service.
func newService() (*api.Service, *runtime.Runtime, error) {
	rt, err := runtime.New(GetConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := rt.Init(); err != nil {
		return nil, nil, err
	}
	return api.NewService(rt), rt, nil
}

// ExitError carries an exit code for main.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Execute runs the CLI.
func Execute(version, commit, date string) error {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	return rootCmd.Execute()
}
