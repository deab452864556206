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

var visitorShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a visitor and its role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			visitors := gormstore.NewVisitorsStore(database, cfg.StoreTimeout())

			v, err := visitors.FindVisitorByName(ctx, args[0])
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("visitor %q not found", args[0])
			}

			roles, err := visitors.ListRolesFor(ctx, v)
			if err != nil {
				return err
			}

			fmt.Printf("ID:       %d\n", v.ID)
			fmt.Printf("Username: %s\n", v.Username)
			if len(roles) == 0 {
				fmt.Println("Role:     (none)")
			}
			for _, role := range roles {
				fmt.Printf("Role:     %s\n", role.Name)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show visitor: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	visitorCmd.AddCommand(visitorShowCmd)
}
