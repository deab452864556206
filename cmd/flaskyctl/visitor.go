package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// visitorCmd represents the visitor command
var visitorCmd = &cobra.Command{
	Use:   "visitor",
	Short: "Manage visitors",
	Long:  `Inspect and seed stored visitors.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'visitor' requires a subcommand (create, list, show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(visitorCmd)
}
