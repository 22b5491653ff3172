package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fyodorov-ai/tsiolkovsky/common"
)

var rootCmd = &cobra.Command{
	Use:          "tsiolkovsky",
	Short:        "Tool registry and health-check API",
	SilenceUsage: true,
	RunE:         runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tsiolkovsky %s (%s)\n", common.Version, runtime.Version())
	},
}

func init() {
	serveCmd := newServeCmd()
	// bare `tsiolkovsky` behaves like `tsiolkovsky serve`
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
