// Package cmd implements the bundlectl command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bundle-tools/bundle-control-plane/internal/logging"
)

var (
	configFiles []string
	logLevel    string
	quiet       bool
)

// RootCmd is the bundlectl entry point.
var RootCmd = &cobra.Command{
	Use:           "bundlectl",
	Short:         "Resolve and build per-variant bundle plans",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", []string{"config.yaml"}, "configuration file or directory (can be repeated)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (error, warn, info, debug)")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}

func newLogger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(level, os.Stderr), nil
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
