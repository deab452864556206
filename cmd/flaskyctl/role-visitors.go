package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/flasky-in-go/pkg/server/store/gorm"
)

var roleVisitorsCmd = &cobra.Command{
	Use:   "visitors <role>",
	Short: "List the visitors assigned to a role",
	Long: `List the visitors assigned to a role.

Example:
  flaskyctl role visitors Admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			roles := gormstore.NewRolesStore(database, cfg.StoreTimeout())
			role, err := roles.FindRoleByName(ctx, args[0])
			if err != nil {
				return err
			}
			if role == nil {
				return fmt.Errorf("%w: %s", store.ErrRoleNotFound, args[0])
			}

			visitors, err := roles.VisitorsForRole(ctx, role.ID)
			if err != nil {
				return err
			}
			for _, v := range visitors {
				fmt.Println(v.Username)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list visitors: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	roleCmd.AddCommand(roleVisitorsCmd)
}
