package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	gormstore "github.com/doodlesbykumbi/flasky-in-go/pkg/server/store/gorm"
)

var visitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored visitors",
	Run: func(cmd *cobra.Command, args []string) {
		err := withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			visitors := gormstore.NewVisitorsStore(database, cfg.StoreTimeout())

			all, err := visitors.ListVisitors(ctx)
			if err != nil {
				return err
			}
			for _, v := range all {
				fmt.Printf("%-6d %s\n", v.ID, v.Username)
			}
			fmt.Printf("%d visitor(s)\n", len(all))
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list visitors: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	visitorCmd.AddCommand(visitorListCmd)
}
