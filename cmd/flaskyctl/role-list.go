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

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	Run: func(cmd *cobra.Command, args []string) {
		err := withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			roles, err := gormstore.NewRolesStore(database, cfg.StoreTimeout()).ListRoles(ctx)
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				fmt.Println("No roles")
				return nil
			}
			fmt.Printf("%-6s %s\n", "ID", "NAME")
			for _, role := range roles {
				fmt.Printf("%-6d %s\n", role.ID, role.Name)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list roles: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	roleCmd.AddCommand(roleListCmd)
}
