// Command agvport runs AGV port simulations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

const banner = `
   __ _  __ ___   __   _ __   ___  _ __| |_
  / _' |/ _' \ \ / /  | '_ \ / _ \| '__| __|
 | (_| | (_| |\ V /   | |_) | (_) | |  | |_
  \__,_|\__, | \_/    | .__/ \___/|_|   \__|
        |___/         |_|
`

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "agvport",
		Short: "Concurrent AGV port simulator",
		Long: `Simulates automated guided vehicles shifting containers on a grid port.
Each AGV plans with A*, steps cell by cell under per-cell locks and replans
around oncoming traffic.`,
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agvport %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Scenario file (.yaml, .yml or .toml); defaults to $AGVPORT_CONFIG or the built-in port")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newGenCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
