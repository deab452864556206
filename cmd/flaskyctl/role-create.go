package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/flasky-in-go/pkg/server/store/gorm"
)

var roleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a role",
	Long: `Create a role.

Example:
  flaskyctl role create Admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			roles := gormstore.NewRolesStore(database, cfg.StoreTimeout())
			role, err := roles.CreateRole(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created role %q (id: %d)\n", role.Name, role.ID)
			return nil
		})
		if errors.Is(err, store.ErrRoleExists) {
			fmt.Fprintf(os.Stderr, "Role %q already exists\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create role: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	roleCmd.AddCommand(roleCreateCmd)
}
