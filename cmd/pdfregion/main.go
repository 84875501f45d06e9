// Command pdfregion extracts text from a rectangular area of a PDF page
// into a spreadsheet, either from the command line or through a local
// HTTP viewer backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/pyhub-apps/pdfregion/internal/config"
	"github.com/pyhub-apps/pdfregion/internal/logging"
)

var (
	configFiles []string
	logLevel    string

	cfg    *config.Config
	logger arbor.ILogger
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pdfregion",
		Short:        "Extract tables from a selected area of a PDF page",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFiles...)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Logging.Level = logLevel
			}
			cfg = loaded
			logger = logging.New(cfg.Logging.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file (repeatable, later files win)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(newServeCmd(), newExtractCmd(), newRunsCmd())
	return rootCmd
}

// fail prints a user-facing message and returns it as the command error
func fail(cmd *cobra.Command, title, description string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", title, description)
	return fmt.Errorf("%s", title)
}
