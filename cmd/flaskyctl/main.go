package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flaskyctl",
	Short: "Run and manage the Flasky visitor application",
	Long: `Run and manage the Flasky visitor application.

Configuration is read from $FLASKY_CONFIG_PATH/flasky.yml and environment
variables; see "flaskyctl configuration show".`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
