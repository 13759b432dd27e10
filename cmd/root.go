// Package cmd wires the CLI commands for the TFGS backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tfgs-backend/internal/config"
	"tfgs-backend/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tfgs",
		Short: "Ingestion pipeline and read API for the TFGS game catalog.",
		Long: `tfgs rebuilds a relational mirror of the TFGS game catalog from the
source site: it loads the taxonomy listings, discovers every game,
fetches detail and review pages concurrently, and loads the parsed
records into Postgres in one atomic rebuild. It also serves the read
API and exports the search index.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReindexCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
