package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optkit-io/optkit/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "optkit",
	Short: "Derivative-free optimization from the command line",
	Long: `optkit runs derivative-free optimization over a catalog of benchmark
objectives, either one-shot from the command line or as an HTTP job
service. The default engine is the pure-Go gonum backend; binaries
built with -tags nlopt can drive libnlopt instead.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log encoding (json, console)")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  logLevel,
		Format: logFormat,
		Output: "stderr",
	})
}
