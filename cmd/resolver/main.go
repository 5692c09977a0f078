// Command resolver runs the catalogue resolver over a file of records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shade-resolver/internal/config"
	"shade-resolver/internal/resolve/model"
)

var (
	cataloguePath string
	verbose       bool

	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "resolver",
	Short:         "Resolve raw product line / shade text against a reference catalogue",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cataloguePath != "" {
			cfg.CataloguePath = cataloguePath
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		// stdout может быть занят результатом
		logger = config.SetupLogger(cfg, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cataloguePath, "catalogue", "c", "", "catalogue file (json/csv/xls/xlsx), default CATALOGUE_PATH")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newResolveCmd(), newStatsCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// options from config, overridden by flags that were set explicitly
func engineOptions(cmd *cobra.Command, threshold float64, numberFallback bool) model.Options {
	opt := cfg.Options()
	if cmd.Flags().Changed("threshold") {
		opt.Threshold = threshold
	}
	if cmd.Flags().Changed("shade-number-fallback") {
		opt.ShadeNumberFallback = numberFallback
	}
	return opt
}
