// Package cmd implements the polysched command line.
package cmd

import (
	"os"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var globalUsage = `Usage: polysched command

Inspect, normalize and solve schedule-constraint documents for a
polyhedral scheduler.
`

type globalOptions struct {
	debug    bool
	noColors bool
}

func newRootCmd(logger *logcli.Logger, args []string) *cobra.Command {
	o := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "polysched",
		Short:        "Inspect and solve schedule-constraint documents",
		Long:         globalUsage,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if o.debug {
				logger.Level = log.DebugLevel
			}
			if o.noColors {
				color.NoColor = true // disable colorized output
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&o.debug, "debug", false, "enable verbose output")
	flags.BoolVar(&o.noColors, "no-colors", false, "disable colorized output")

	cmd.AddCommand(
		newStatsCmd(logger),
		newAlignCmd(logger),
		newLexCmd(logger, false),
		newLexCmd(logger, true),
	)
	cmd.SetArgs(args)

	return cmd
}

// Execute runs the polysched command line and exits on failure.
func Execute() {
	logger := logcli.NewStandard()
	logger.Level = log.InfoLevel
	log.Current = logger

	cmd := newRootCmd(logger, os.Args[1:])
	if err := cmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
