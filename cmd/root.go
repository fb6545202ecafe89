// Package cmd defines the hyttevakt command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solheim-lab/hyttevakt/internal/build"
)

var rootCmd = &cobra.Command{
	Use:     "hyttevakt",
	Short:   "DNT cabin availability watcher",
	Long:    "Watches DNT cabin booking calendars and notifies when new dates, Saturdays, or full weekends open up.",
	Version: build.String(),
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(resetCmd)
}
